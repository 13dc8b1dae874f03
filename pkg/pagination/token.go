package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// tokenDelimiter separates the token fields. It is reserved: index names
// never contain it.
const tokenDelimiter = "$"

// ErrMalformedToken is returned when a continuation token cannot be
// decoded or fails validation. It is a client-input error: the engine is
// never invoked with a token that failed to decode.
var ErrMalformedToken = errors.New("malformed continuation token")

// Token is the decoded continuation token. It is value-semantic and
// request-scoped: constructed once per page that has remaining data,
// handed to the client as an opaque string, and consumed at the start of
// the following call. Nothing is retained server-side.
type Token struct {
	// LastShardID is the id of the last shard included in the page.
	LastShardID int

	// IndexPosition is the position in the sorted index sequence at which
	// the next page starts.
	IndexPosition int

	// AnchorCreationTime is the creation timestamp of the anchor index.
	AnchorCreationTime int64

	// QueryStartTime is the upper creation-time bound fixed at the first
	// page of the sequence and carried unchanged thereafter.
	QueryStartTime int64

	// AnchorIndexName names the last index that contributed shards to a
	// page; the next call validates resumption against it.
	AnchorIndexName string
}

// Encode serializes the token to its transport-safe opaque form:
// base64url without padding over the $-joined fields.
func (t Token) Encode() string {
	raw := strings.Join([]string{
		strconv.Itoa(t.LastShardID),
		strconv.Itoa(t.IndexPosition),
		strconv.FormatInt(t.AnchorCreationTime, 10),
		strconv.FormatInt(t.QueryStartTime, 10),
		t.AnchorIndexName,
	}, tokenDelimiter)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeToken parses and validates an opaque continuation token. Any
// violation (undecodable string, wrong field count, non-numeric or
// negative numeric field, empty index name) yields ErrMalformedToken.
func DecodeToken(s string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	fields := strings.Split(string(raw), tokenDelimiter)
	if len(fields) != 5 {
		return Token{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrMalformedToken, len(fields))
	}

	lastShardID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid shard id %q", ErrMalformedToken, fields[0])
	}
	indexPosition, err := strconv.Atoi(fields[1])
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid index position %q", ErrMalformedToken, fields[1])
	}
	anchorCreationTime, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid anchor creation time %q", ErrMalformedToken, fields[2])
	}
	queryStartTime, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid query start time %q", ErrMalformedToken, fields[3])
	}

	if lastShardID < 0 || indexPosition < 0 || anchorCreationTime < 0 || queryStartTime < 0 {
		return Token{}, fmt.Errorf("%w: negative numeric field", ErrMalformedToken)
	}
	if fields[4] == "" {
		return Token{}, fmt.Errorf("%w: empty index name", ErrMalformedToken)
	}

	return Token{
		LastShardID:        lastShardID,
		IndexPosition:      indexPosition,
		AnchorCreationTime: anchorCreationTime,
		QueryStartTime:     queryStartTime,
		AnchorIndexName:    fields[4],
	}, nil
}
