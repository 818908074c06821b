package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JWK is the JSON representation of a P-256 elliptic curve key. The private
// projection carries the scalar d; Public strips it. The private projection
// is never serialized by this package.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

// Public returns the public projection of the key.
func (k JWK) Public() JWK {
	k.D = ""
	return k
}

// defaultSigningJWK is the development key pair published with the original
// project. It exists so a misconfigured process still boots, but every token
// signed with it is trusted by anyone holding this repo. LoadPrivateKey
// flags the condition through UsingDefaultKey and an Error log.
var defaultSigningJWK = JWK{
	Kty: "EC",
	Crv: "P-256",
	X:   "dMaUs2RTZe0WB1g1zGXKFByJ-Px9StHH5l5XGNeKsyI",
	Y:   "QQYtIVT30shDfFEWmnayVUrf0f_39UA7EKk3ua-oTjg",
	D:   "5O23vIXuuv2l1cPTxUulXreVxLKp5MKffpPPvGEtwIw",
}

// KeyPair holds the process signing key. It is loaded once and read only
// afterwards, safe to share across concurrent operations.
type KeyPair struct {
	jwk          JWK
	private      *ecdsa.PrivateKey
	kid          string
	usingDefault bool
}

// LoadPrivateKey parses the configured private JWK JSON. A missing or
// malformed value degrades to the compiled-in default pair instead of
// failing startup; the degrade is non fatal but loud.
func LoadPrivateKey(jsonValue string, logger Logger) *KeyPair {
	if logger == nil {
		logger = defLogger{}
	}

	if jsonValue == "" {
		logger.Error("signing key not configured, falling back to built-in development key; tokens are signed with publicly known material")
		return mustKeyPair(defaultSigningJWK, true)
	}

	var jwk JWK
	if err := json.Unmarshal([]byte(jsonValue), &jwk); err != nil {
		logger.Error("signing key config malformed, falling back to built-in development key", "error", err)
		return mustKeyPair(defaultSigningJWK, true)
	}

	kp, err := newKeyPair(jwk, false)
	if err != nil {
		logger.Error("signing key config invalid, falling back to built-in development key", "error", err)
		return mustKeyPair(defaultSigningJWK, true)
	}

	return kp
}

func mustKeyPair(jwk JWK, usingDefault bool) *KeyPair {
	kp, err := newKeyPair(jwk, usingDefault)
	if err != nil {
		// The compiled-in key is known good; reaching this is a build defect.
		panic("auth: built-in signing key is invalid: " + err.Error())
	}
	return kp
}

func newKeyPair(jwk JWK, usingDefault bool) (*KeyPair, error) {
	if jwk.Kty != "EC" {
		return nil, fmt.Errorf("unsupported key type %q", jwk.Kty)
	}
	if jwk.Crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve %q", jwk.Crv)
	}
	if jwk.D == "" {
		return nil, fmt.Errorf("missing private scalar")
	}

	x, err := decodeCoordinate(jwk.X, "x")
	if err != nil {
		return nil, err
	}
	y, err := decodeCoordinate(jwk.Y, "y")
	if err != nil {
		return nil, err
	}
	d, err := decodeCoordinate(jwk.D, "d")
	if err != nil {
		return nil, err
	}

	curve := elliptic.P256()
	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("public point is not on P-256")
	}

	private := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}

	return &KeyPair{
		jwk:          jwk,
		private:      private,
		kid:          thumbprint(jwk),
		usingDefault: usingDefault,
	}, nil
}

func decodeCoordinate(value, name string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("missing %s coordinate", name)
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s coordinate: %w", name, err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// thumbprint computes the RFC 7638 key thumbprint used as the kid header on
// issued tokens. Members are serialized in lexicographic order.
func thumbprint(jwk JWK) string {
	canonical := fmt.Sprintf(`{"crv":%q,"kty":%q,"x":%q,"y":%q}`, jwk.Crv, jwk.Kty, jwk.X, jwk.Y)
	sum := sha256.Sum256([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// PrivateKey returns the signing key.
func (kp *KeyPair) PrivateKey() *ecdsa.PrivateKey {
	return kp.private
}

// PublicKey returns the verification key.
func (kp *KeyPair) PublicKey() *ecdsa.PublicKey {
	return &kp.private.PublicKey
}

// PublicJWK returns the public projection, the only representation this
// package ever exposes.
func (kp *KeyPair) PublicJWK() JWK {
	return kp.jwk.Public()
}

// KID returns the RFC 7638 thumbprint identifying this key.
func (kp *KeyPair) KID() string {
	return kp.kid
}

// UsingDefaultKey reports whether the process fell back to the compiled-in
// development key. Operators should treat true as a misconfiguration.
func (kp *KeyPair) UsingDefaultKey() bool {
	return kp.usingDefault
}

// PublicJWKSet serializes the public projection as a single-key JWK Set,
// the shape the verification keyfunc consumes.
func (kp *KeyPair) PublicJWKSet() ([]byte, error) {
	pub := kp.PublicJWK()
	set := map[string]any{
		"keys": []map[string]any{
			{
				"kty": pub.Kty,
				"crv": pub.Crv,
				"x":   pub.X,
				"y":   pub.Y,
				"kid": kp.kid,
				"alg": "ES256",
				"use": "sig",
			},
		},
	}
	return json.Marshal(set)
}
