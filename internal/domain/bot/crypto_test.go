package bot

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("dev-secret")
	token := "123456789:AAHdqTcvbXYZabcdefghijklmn_opqrstuv"

	ct, err := EncryptToken(token, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(ct, []byte(token)) {
		t.Fatal("ciphertext contains plaintext token")
	}

	got, err := DecryptToken(ct, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != token {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	ct, err := EncryptToken("123456789:AAHdqTcvbsecretsecretsecret", DeriveKey("key-a"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := DecryptToken(ct, DeriveKey("key-b")); err == nil {
		t.Fatal("expected decryption failure with wrong key")
	}
}

func TestDecryptShortCiphertext(t *testing.T) {
	if _, err := DecryptToken([]byte("short"), DeriveKey("k")); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestNoncesDiffer(t *testing.T) {
	key := DeriveKey("dev-secret")
	a, _ := EncryptToken("123456789:AAHdqTcvbsecretsecretsecret", key)
	b, _ := EncryptToken("123456789:AAHdqTcvbsecretsecretsecret", key)
	if bytes.Equal(a, b) {
		t.Fatal("expected distinct ciphertexts for repeated encryption")
	}
}
