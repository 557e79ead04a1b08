// Copyright 2024 The RuleKit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package function

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"

	"github.com/rulekit/ruleengine/value"
)

// callSecurity implements encrypt/decrypt/mask_data. encrypt/decrypt use
// AES-256-GCM keyed by a SHA-256 digest of the supplied key argument, so any
// string key works regardless of length. The nonce is generated per call and
// prefixed to the ciphertext; output is base64 so the result round-trips
// through the string value domain.
func callSecurity(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "encrypt":
		plain, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		key, _ := stringArg(args, 1)
		ciphertext, err := aesEncrypt(plain, key)
		if err != nil {
			return nil, err
		}
		return value.String(ciphertext), nil

	case "decrypt":
		enc, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		key, _ := stringArg(args, 1)
		plain, err := aesDecrypt(enc, key)
		if err != nil {
			return nil, err
		}
		return value.String(plain), nil

	case "mask_data":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		visible := 4
		if n, nNull, err := numericArg(args, 1); err == nil && !nNull {
			visible = int(n.D.IntPart())
		}
		return value.String(maskKeepSuffix(s, visible)), nil
	}
	return nil, errUnknownFunction(name)
}

func aesKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func aesEncrypt(plaintext, passphrase string) (string, error) {
	block, err := aes.NewCipher(aesKey(passphrase))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func aesDecrypt(encoded, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errEval("decrypt: invalid ciphertext encoding")
	}
	block, err := aes.NewCipher(aesKey(passphrase))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errEval("decrypt: ciphertext too short")
	}
	nonce, body := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", errEval("decrypt: authentication failed")
	}
	return string(plain), nil
}

func maskKeepSuffix(s string, visible int) string {
	if visible < 0 {
		visible = 0
	}
	if visible >= len(s) {
		return s
	}
	masked := strings.Repeat("*", len(s)-visible)
	return masked + s[len(s)-visible:]
}
