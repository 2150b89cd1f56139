package payments

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PayUClient prepares PayU form transactions. PayU has no order API:
// the transaction id is generated locally, and the client posts the
// signed field set to the PayU form endpoint.
type PayUClient struct {
	merchantKey  string
	merchantSalt string
	baseURL      string
}

func NewPayUClient(merchantKey, merchantSalt, baseURL string) *PayUClient {
	if baseURL == "" {
		baseURL = "https://secure.payu.in/_payment"
	}
	return &PayUClient{
		merchantKey:  merchantKey,
		merchantSalt: merchantSalt,
		baseURL:      baseURL,
	}
}

// Transaction is the signed field set for one checkout attempt.
type Transaction struct {
	TxnID       string            `json:"txnid"`
	Amount      string            `json:"amount"`
	ProductInfo string            `json:"productinfo"`
	Hash        string            `json:"hash"`
	PaymentURL  string            `json:"payment_url"`
	Fields      map[string]string `json:"fields"`
}

// NewTransaction builds a transaction with a locally generated txnid.
// amountMinor is in paise; PayU wants a decimal rupee string.
func (c *PayUClient) NewTransaction(amountMinor int64, productInfo, firstName, email, successURL, failureURL string) *Transaction {
	txnID := "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	amount := fmt.Sprintf("%.2f", float64(amountMinor)/100)

	hash := c.RequestHash(txnID, amount, productInfo, firstName, email)

	return &Transaction{
		TxnID:       txnID,
		Amount:      amount,
		ProductInfo: productInfo,
		Hash:        hash,
		PaymentURL:  c.baseURL,
		Fields: map[string]string{
			"key":         c.merchantKey,
			"txnid":       txnID,
			"amount":      amount,
			"productinfo": productInfo,
			"firstname":   firstName,
			"email":       email,
			"surl":        successURL,
			"furl":        failureURL,
			"hash":        hash,
		},
	}
}

// RequestHash computes the PayU request signature:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf5||||||salt)
// with the five udf slots empty.
func (c *PayUClient) RequestHash(txnID, amount, productInfo, firstName, email string) string {
	payload := strings.Join([]string{
		c.merchantKey, txnID, amount, productInfo, firstName, email,
		"", "", "", "", "", // udf1..udf5
		"", "", "", "", "",
		c.merchantSalt,
	}, "|")

	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}
