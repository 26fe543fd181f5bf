package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/updraft/pkg/utils/signature"
)

func TestSign(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("payload"))
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	gt.Value(t, signature.Sign("secret", []byte("payload"))).Equal(want)
}

func TestVerify(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{"action":"published","release":{"tag_name":"v1.0.0"}}`)
	valid := signature.Sign(secret, payload)

	tests := []struct {
		name    string
		secret  string
		payload []byte
		header  string
		want    bool
	}{
		{name: "valid signature", secret: secret, payload: payload, header: valid, want: true},
		{name: "missing header", secret: secret, payload: payload, header: "", want: false},
		{name: "garbage header", secret: secret, payload: payload, header: "sha256=invalid", want: false},
		{name: "missing prefix", secret: secret, payload: payload, header: valid[len("sha256="):], want: false},
		{name: "uppercase hex", secret: secret, payload: payload, header: "sha256=" + upper(valid[len("sha256="):]), want: false},
		{name: "wrong secret", secret: "other-secret", payload: payload, header: valid, want: false},
		{name: "modified payload", secret: secret, payload: []byte(`{"action":"deleted"}`), header: valid, want: false},
		{name: "empty secret accepts anything", secret: "", payload: payload, header: "sha256=invalid", want: true},
		{name: "empty secret accepts missing header", secret: "", payload: nil, header: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, signature.Verify(tt.secret, tt.payload, tt.header)).Equal(tt.want)
		})
	}
}

func TestVerify_RejectsSingleBitMutations(t *testing.T) {
	secrets := []string{"s", "test-secret", "a much longer shared secret with spaces"}
	payloads := [][]byte{
		[]byte("x"),
		[]byte(`{"action":"published"}`),
		make([]byte, 64),
	}

	for _, secret := range secrets {
		for _, payload := range payloads {
			header := signature.Sign(secret, payload)
			gt.True(t, signature.Verify(secret, payload, header))

			// Flip every bit of the body
			for i := range payload {
				for bit := 0; bit < 8; bit++ {
					mutated := append([]byte(nil), payload...)
					mutated[i] ^= 1 << bit
					if signature.Verify(secret, mutated, header) {
						t.Fatalf("mutated payload accepted: secret=%q byte=%d bit=%d", secret, i, bit)
					}
				}
			}

			// Flip every bit of the secret
			for i := range secret {
				for bit := 0; bit < 8; bit++ {
					mutated := []byte(secret)
					mutated[i] ^= 1 << bit
					if signature.Verify(string(mutated), payload, header) {
						t.Fatalf("mutated secret accepted: secret=%q byte=%d bit=%d", secret, i, bit)
					}
				}
			}
		}
	}
}

func TestVerify_EmptySecretAlwaysAccepts(t *testing.T) {
	headers := []string{"", "sha256=", "sha256=deadbeef", "garbage"}
	payloads := [][]byte{nil, {}, []byte("anything"), []byte(`{"action":"published"}`)}

	for _, h := range headers {
		for _, p := range payloads {
			gt.True(t, signature.Verify("", p, h))
		}
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
