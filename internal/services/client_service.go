package services

import (
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"gorm.io/gorm"
)

type ClientService interface {
	CreateClient(db *gorm.DB, userID string, req *dto.CreateClientRequest) (*models.Client, error)
	GetClient(db *gorm.DB, userID, clientID string) (*models.Client, error)
	ListClients(db *gorm.DB, userID string) ([]models.Client, error)
	UpdateClient(db *gorm.DB, userID, clientID string, req *dto.UpdateClientRequest) (*models.Client, error)
	DeleteClient(db *gorm.DB, userID, clientID string) error
	FollowUpsDue(db *gorm.DB, userID string, within time.Duration) ([]models.Client, error)
}

type clientService struct {
	clientRepo repositories.ClientRepository
	policyRepo repositories.PolicyRepository
}

func NewClientService(
	clientRepo repositories.ClientRepository,
	policyRepo repositories.PolicyRepository,
) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		policyRepo: policyRepo,
	}
}

func (s *clientService) CreateClient(db *gorm.DB, userID string, req *dto.CreateClientRequest) (*models.Client, error) {
	client := &models.Client{
		UserID:       userID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		Notes:        req.Notes,
		NextFollowUp: req.NextFollowUp,
	}
	if err := s.clientRepo.Create(db, client); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return client, nil
}

func (s *clientService) GetClient(db *gorm.DB, userID, clientID string) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(db, userID, clientID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrClientNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	policies, err := s.policyRepo.FindByClient(db, userID, clientID)
	if err == nil {
		client.Policies = policies
	}
	return client, nil
}

func (s *clientService) ListClients(db *gorm.DB, userID string) ([]models.Client, error) {
	clients, err := s.clientRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return clients, nil
}

func (s *clientService) UpdateClient(db *gorm.DB, userID, clientID string, req *dto.UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(db, userID, clientID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrClientNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FullName != nil {
		client.FullName = *req.FullName
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.DateOfBirth != nil {
		client.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.NextFollowUp != nil {
		client.NextFollowUp = req.NextFollowUp
	}

	if err := s.clientRepo.Update(db, client); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return client, nil
}

func (s *clientService) DeleteClient(db *gorm.DB, userID, clientID string) error {
	err := s.clientRepo.Delete(db, userID, clientID)
	if apperrors.Is(err, repositories.ErrClientNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}

func (s *clientService) FollowUpsDue(db *gorm.DB, userID string, within time.Duration) ([]models.Client, error) {
	return s.clientRepo.FindFollowUpsDue(db, userID, time.Now().Add(within))
}
