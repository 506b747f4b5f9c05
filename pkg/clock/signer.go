package clock

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// Signer shifts the signing time of each request by the setting's current offset before
// delegating. It satisfies the HTTPSignerV4 option of every aws-sdk-go-v2 service.
type Signer struct {
	next    v4.HTTPSigner
	setting *Setting
}

// Signer wraps next so requests are signed with the corrected clock. A nil next selects the
// default SigV4 signer.
func (s *Setting) Signer(next v4.HTTPSigner) *Signer {
	if next == nil {
		next = v4.NewSigner()
	}

	return &Signer{next: next, setting: s}
}

// SignHTTP implements v4.HTTPSigner.
func (s *Signer) SignHTTP(
	ctx context.Context,
	credentials aws.Credentials,
	r *http.Request,
	payloadHash string,
	service string,
	region string,
	signingTime time.Time,
	optFns ...func(*v4.SignerOptions),
) error {
	return s.next.SignHTTP( //nolint:wrapcheck // signer errors are returned to the SDK untouched.
		ctx,
		credentials,
		r,
		payloadHash,
		service,
		region,
		signingTime.Add(s.setting.Offset()),
		optFns...,
	)
}
