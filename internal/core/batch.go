package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// batchDocument is the bulk request body. The list stays raw so each item
// can be decoded on its own.
type batchDocument struct {
	Certificates json.RawMessage `json:"certificates"`
}

// DecodeBatch reads a {"certificates": [...]} document.
//
// An unreadable body, or a "certificates" value that is absent, null or not
// a list, yields ErrMalformedBatch; the underlying read error stays in the
// chain so callers can still detect size limits. Items that do not decode
// into a payload become empty payloads, which ValidateBatchItem rejects.
func DecodeBatch(r io.Reader) ([]CertificatePayload, error) {
	var doc batchDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBatch, err)
	}

	list := bytes.TrimSpace(doc.Certificates)
	if len(list) == 0 || bytes.Equal(list, []byte("null")) {
		return nil, ErrMalformedBatch
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(list, &rawItems); err != nil {
		return nil, fmt.Errorf("certificates is not a list: %w", ErrMalformedBatch)
	}

	items := make([]CertificatePayload, len(rawItems))
	for i, item := range rawItems {
		if err := json.Unmarshal(item, &items[i]); err != nil {
			items[i] = CertificatePayload{}
		}
	}
	return items, nil
}
