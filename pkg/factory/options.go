package factory

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"dario.cat/mergo"
)

// Options is the per-client configuration mapping. Zero fields are filled from the factory
// defaults and then from the environment.
type Options struct {
	Region          string        `json:"region,omitempty"          yaml:"region"`
	Endpoint        string        `json:"endpoint,omitempty"        yaml:"endpoint"`
	AccessKeyID     string        `json:"accessKeyId,omitempty"     yaml:"accessKeyId"`
	SecretAccessKey string        `json:"secretAccessKey,omitempty" yaml:"secretAccessKey"`
	SessionToken    string        `json:"sessionToken,omitempty"    yaml:"sessionToken"`
	MaxAttempts     int           `json:"maxAttempts,omitempty"     yaml:"maxAttempts"`
	RetryMode       string        `json:"retryMode,omitempty"       yaml:"retryMode"`
	HTTPTimeout     time.Duration `json:"httpTimeout,omitempty"     yaml:"httpTimeout"`
	AppID           string        `json:"appId,omitempty"           yaml:"appId"`

	// OCIRegion, OCIProfile and OCIAuth only apply to Oracle Cloud services. OCIRegion fills
	// the region of OCI clients in place of Region.
	OCIRegion  string `json:"ociRegion,omitempty"  yaml:"ociRegion"`
	OCIProfile string `json:"ociProfile,omitempty" yaml:"ociProfile"`
	OCIAuth    string `json:"ociAuth,omitempty"    yaml:"ociAuth"`

	// UserAgent pairs are appended to every request's User-Agent header.
	UserAgent map[string]string `json:"userAgent,omitempty" yaml:"userAgent"`
}

func (o Options) clone() Options {
	o.UserAgent = maps.Clone(o.UserAgent)

	return o
}

// forAWS drops the Oracle Cloud fields.
func (o Options) forAWS() Options {
	o.OCIRegion = ""
	o.OCIProfile = ""
	o.OCIAuth = ""

	return o
}

// forOCI maps OCIRegion onto Region and drops the AWS-only fields, so AWS defaults such as a
// region or a local endpoint never reach an OCI client.
func (o Options) forOCI() Options {
	return Options{
		Region:     o.OCIRegion,
		OCIRegion:  o.OCIRegion,
		OCIProfile: o.OCIProfile,
		OCIAuth:    o.OCIAuth,
	}
}

// mergeOptions layers the sources left to right: earlier layers win, later layers only fill
// fields that are still zero.
func mergeOptions(layers ...Options) (Options, error) {
	if len(layers) == 0 {
		return Options{}, nil
	}

	merged := layers[0].clone()

	for _, layer := range layers[1:] {
		err := mergo.Merge(&merged, layer.clone())
		if err != nil {
			return Options{}, fmt.Errorf("merge options: %w", err)
		}
	}

	return merged, nil
}

// canonicalKey renders options in a stable form. Struct fields encode in declaration order and
// map keys are sorted, so insertion order never affects the key.
func canonicalKey(opts Options) (string, error) {
	encoded, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}

	return string(encoded), nil
}
