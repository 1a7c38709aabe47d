package enrollmentcodec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

// Fallback used when no secret is configured. Keeping the mobile client's
// value so links produced by older app versions stay decodable.
const DEFAULT_SECRET = "default_key"

var (
	ErrDecode    = errors.New("enrollment payload could not be decoded")
	ErrIntegrity = errors.New("enrollment payload integrity check failed")
)

// envelope is the wire bundle: the serialized value together with a keyed
// digest over it.
type envelope struct {
	Data string `json:"data"`
	Hash string `json:"hash"`
}

// Codec encodes JSON serializable values into opaque, integrity checked,
// URL safe strings and back. The transform is pure, a codec is safe for
// concurrent use.
type Codec struct {
	secret string
}

func New(secret string) *Codec {
	if secret == "" {
		secret = DEFAULT_SECRET
	}
	return &Codec{secret: secret}
}

// Encode serializes v, computes a digest over the serialized form and the
// secret, and returns the URL safe encoding of the bundle.
func (c *Codec) Encode(v interface{}) (string, error) {
	serialized, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	bundle, err := json.Marshal(envelope{
		Data: string(serialized),
		Hash: c.digest(string(serialized)),
	})
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString([]byte(url.QueryEscape(string(bundle)))), nil
}

// Decode reverses Encode into out. Returns ErrDecode for malformed input and
// ErrIntegrity when the recomputed digest does not match the stored one.
func (c *Codec) Decode(encoded string, out interface{}) error {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return ErrDecode
	}

	unescaped, err := url.QueryUnescape(string(raw))
	if err != nil {
		return ErrDecode
	}

	var bundle envelope
	if err := json.Unmarshal([]byte(unescaped), &bundle); err != nil {
		return ErrDecode
	}

	if bundle.Hash != c.digest(bundle.Data) {
		return ErrIntegrity
	}

	if err := json.Unmarshal([]byte(bundle.Data), out); err != nil {
		return ErrDecode
	}
	return nil
}

func (c *Codec) digest(serialized string) string {
	sum := sha256.Sum256([]byte(serialized + c.secret))
	return hex.EncodeToString(sum[:])
}

// BuildEnrollmentLink wraps Encode for the descriptor type. Survey listing
// endpoints use it to construct navigation targets.
func (c *Codec) BuildEnrollmentLink(descriptor enrollmentTypes.EnrollmentDescriptor) (string, error) {
	if descriptor.ProjectCode == "" {
		return "", errors.New("projectCode must be defined")
	}
	return c.Encode(descriptor)
}

// ConsumeEnrollmentLink wraps Decode for the descriptor type.
func (c *Codec) ConsumeEnrollmentLink(encoded string) (descriptor enrollmentTypes.EnrollmentDescriptor, err error) {
	err = c.Decode(encoded, &descriptor)
	if err != nil {
		return descriptor, err
	}
	if descriptor.ProjectCode == "" {
		return descriptor, ErrDecode
	}
	return descriptor, nil
}
