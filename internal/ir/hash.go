package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainFact prefixes fact hashes. The version suffix leaves room to
// change the hashed shape later without colliding with old IDs.
const DomainFact = "prodsys/fact/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ID returns the content-addressed identifier of the fact.
// Structurally identical facts always share an ID, across sessions and runs.
func (f Fact) ID() string {
	canonical, err := MarshalCanonical(f)
	if err != nil {
		// A Fact holds three strings; canonical marshaling cannot fail.
		panic(err)
	}
	return hashWithDomain(DomainFact, canonical)
}
