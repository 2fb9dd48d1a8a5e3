// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package snowflake

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

const pemMarker = "-----BEGIN"

// ResolvePrivateKey loads the key-pair authentication key. The inline value wins over
// path and may be PEM text, PEM with literal \n sequences, or base64 of either PEM or DER.
func ResolvePrivateKey(inline, path string) (*rsa.PrivateKey, error) {
	var raw []byte

	switch {
	case strings.TrimSpace(inline) != "":
		raw = []byte(strings.TrimSpace(inline))
	case strings.TrimSpace(path) != "":
		b, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}

		raw = b
	default:
		return nil, errors.New("no private key configured")
	}

	return parsePrivateKey(raw)
}

func parsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	text := strings.ReplaceAll(string(raw), `\n`, "\n")

	if !strings.Contains(text, pemMarker) {
		decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("private key is neither PEM nor base64: %w", err)
		}

		if !strings.Contains(string(decoded), pemMarker) {
			return parseDER(decoded)
		}

		text = string(decoded)
	}

	block, _ := pem.Decode([]byte(text))
	if block == nil {
		return nil, errors.New("private key PEM block could not be decoded")
	}

	if block.Type == "ENCRYPTED PRIVATE KEY" || strings.Contains(block.Headers["Proc-Type"], "ENCRYPTED") {
		return nil, fmt.Errorf("%w: encrypted private keys are not supported", constant.ErrUnsupportedKey)
	}

	return parseDER(block.Bytes)
}

func parseDER(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: key is %T, expected RSA", constant.ErrUnsupportedKey, key)
		}

		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("private key is not PKCS#8 or PKCS#1: %w", err)
	}

	return key, nil
}
