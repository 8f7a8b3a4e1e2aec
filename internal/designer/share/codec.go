// Package share encodes a design into a URL-fragment-safe blob and back.
//
// The blob is JSON compressed with snappy and encoded as unpadded base64url.
// Floor plan images never travel in the blob: the serialized form carries a
// sentinel and the image lives in a local key-value store under a fixed key.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"circuitee/internal/designer/models"

	"github.com/golang/snappy"
)

// FloorPlanKey is the key-value store key holding the floor plan image. Scoped
// persisters store under FloorPlanKey/<scope>; blobs without a reference fall
// back to the bare key.
const FloorPlanKey = "circuitee-floorplan"

// FloorPlanKeyFor returns the store key of the floor plan owned by scope.
func FloorPlanKeyFor(scope string) string {
	if scope == "" {
		return FloorPlanKey
	}
	return FloorPlanKey + "/" + scope
}

var ErrInvalidBlob = errors.New("invalid share blob")

// Serialize encodes the design. A floor plan is replaced by the sentinel; the
// reference is kept only while a floor plan is present.
func Serialize(d models.Design) (string, error) {
	if d.FloorPlan != "" {
		d.FloorPlan = models.FloorPlanSentinel
	} else {
		d.FloorPlanRef = ""
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, payload)), nil
}

// Deserialize decodes a blob, upgrading legacy payloads. The floor plan, if
// any, is left as the sentinel; see Load.
func Deserialize(blob string) (models.Design, error) {
	blob = strings.TrimPrefix(strings.TrimSpace(blob), "#")
	if blob == "" {
		return models.Design{}, fmt.Errorf("empty: %w", ErrInvalidBlob)
	}

	compressed, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return models.Design{}, fmt.Errorf("base64: %v: %w", err, ErrInvalidBlob)
	}
	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return models.Design{}, fmt.Errorf("snappy: %v: %w", err, ErrInvalidBlob)
	}

	var wire wireDesign
	if err := json.Unmarshal(payload, &wire); err != nil {
		return models.Design{}, fmt.Errorf("json: %v: %w", err, ErrInvalidBlob)
	}
	return wire.upgrade(), nil
}

// ShareURL builds the link that opens the design in test mode.
func ShareURL(base, blob string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = ""
	u.Fragment = ""

	q := url.Values{}
	q.Set("mode", string(models.ModeTest))
	u.RawQuery = q.Encode()
	return u.String() + "#" + blob, nil
}

// ParseShareURL extracts the blob and the requested mode from a share link.
// A bare blob is accepted as well.
func ParseShareURL(raw string) (blob string, mode models.Mode, err error) {
	if !strings.Contains(raw, "#") {
		return raw, "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse share url: %w", err)
	}
	mode = models.Mode(u.Query().Get("mode"))
	if !mode.Valid() {
		mode = ""
	}
	return u.Fragment, mode, nil
}
