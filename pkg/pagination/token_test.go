package pagination

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestToken_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token Token
	}{
		{
			name: "typical mid-sequence token",
			token: Token{
				LastShardID:        4,
				IndexPosition:      12,
				AnchorCreationTime: 1700000000000,
				QueryStartTime:     1700000005000,
				AnchorIndexName:    "logs-2024.01.15",
			},
		},
		{
			name: "zero numeric fields",
			token: Token{
				LastShardID:        0,
				IndexPosition:      0,
				AnchorCreationTime: 0,
				QueryStartTime:     0,
				AnchorIndexName:    "a",
			},
		},
		{
			name: "index name with unusual characters",
			token: Token{
				LastShardID:        1,
				IndexPosition:      3,
				AnchorCreationTime: 100,
				QueryStartTime:     300,
				AnchorIndexName:    ".kibana_task_manager-7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.token.Encode()
			decoded, err := DecodeToken(encoded)
			if err != nil {
				t.Fatalf("DecodeToken(%q) failed: %v", encoded, err)
			}
			if decoded != tt.token {
				t.Errorf("round trip = %+v, want %+v", decoded, tt.token)
			}
		})
	}
}

func TestToken_EncodeIsOpaque(t *testing.T) {
	token := Token{LastShardID: 1, IndexPosition: 2, AnchorCreationTime: 200, QueryStartTime: 300, AnchorIndexName: "B"}
	encoded := token.Encode()

	// base64url without padding must decode cleanly and contain no '='
	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		t.Errorf("Encode produced invalid base64url: %v", err)
	}
	for _, c := range encoded {
		if c == '=' {
			t.Error("Encode produced padded output")
		}
	}
}

func TestDecodeToken_Malformed(t *testing.T) {
	encode := func(raw string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(raw))
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "!!!not-base64!!!"},
		{name: "four fields", input: encode("abc$1$2$3")},
		{name: "six fields", input: encode("0$1$2$3$name$extra")},
		{name: "non-numeric shard id", input: encode("abc$1$2$3$name")},
		{name: "non-numeric index position", input: encode("0$x$2$3$name")},
		{name: "non-numeric anchor creation time", input: encode("0$1$x$3$name")},
		{name: "non-numeric query start time", input: encode("0$1$2$x$name")},
		{name: "negative shard id", input: encode("-1$1$2$3$name")},
		{name: "negative index position", input: encode("0$-1$2$3$name")},
		{name: "negative anchor creation time", input: encode("0$1$-2$3$name")},
		{name: "negative query start time", input: encode("0$1$2$-3$name")},
		{name: "empty index name", input: encode("0$1$2$3$")},
		{name: "empty string", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.input)
			if err == nil {
				t.Fatalf("DecodeToken(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, ErrMalformedToken) {
				t.Errorf("DecodeToken error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestDecodeToken_ValidFields(t *testing.T) {
	raw := "4$12$1700000000000$1700000005000$logs-2024"
	encoded := base64.RawURLEncoding.EncodeToString([]byte(raw))

	token, err := DecodeToken(encoded)
	if err != nil {
		t.Fatalf("DecodeToken failed: %v", err)
	}

	if token.LastShardID != 4 {
		t.Errorf("LastShardID = %d, want 4", token.LastShardID)
	}
	if token.IndexPosition != 12 {
		t.Errorf("IndexPosition = %d, want 12", token.IndexPosition)
	}
	if token.AnchorCreationTime != 1700000000000 {
		t.Errorf("AnchorCreationTime = %d, want 1700000000000", token.AnchorCreationTime)
	}
	if token.QueryStartTime != 1700000005000 {
		t.Errorf("QueryStartTime = %d, want 1700000005000", token.QueryStartTime)
	}
	if token.AnchorIndexName != "logs-2024" {
		t.Errorf("AnchorIndexName = %q, want %q", token.AnchorIndexName, "logs-2024")
	}
}

// TestDecodeToken_EmptyStringNotZeroFields documents that an empty decoded
// payload is one (empty) field, not zero, and is rejected by field count.
func TestDecodeToken_EmptyPayload(t *testing.T) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(""))
	if _, err := DecodeToken(encoded); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("DecodeToken of empty payload = %v, want ErrMalformedToken", err)
	}
}
