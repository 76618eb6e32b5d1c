package codeforces

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
)

// prefixAlphabet is the character set for the random signature prefix. The
// prefix is a nonce preventing signature collisions across near-simultaneous
// requests; it is not cryptographically significant.
const prefixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// prefixLength is the required length of the signature prefix.
const prefixLength = 6

// Signer computes the apiSig parameter for authorized API methods.
type Signer struct {
	secret string
}

// NewSigner creates a signer for the given shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign computes the signature for a method call with a fixed prefix. The
// signature is the prefix concatenated with the lowercase hex SHA-512 digest
// of "prefix/method?sortedParams#secret", where sortedParams joins key=value
// pairs with "&" in ascending key order.
func (s *Signer) Sign(method string, params url.Values, prefix string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}

	hashInput := fmt.Sprintf("%s/%s?%s#%s", prefix, method, strings.Join(pairs, "&"), s.secret)
	digest := sha512.Sum512([]byte(hashInput))
	return prefix + hex.EncodeToString(digest[:])
}

// SignRequest computes the signature with a freshly generated random prefix.
func (s *Signer) SignRequest(method string, params url.Values) string {
	return s.Sign(method, params, randomPrefix())
}

func randomPrefix() string {
	b := make([]byte, prefixLength)
	for i := range b {
		b[i] = prefixAlphabet[rand.Intn(len(prefixAlphabet))]
	}
	return string(b)
}
