// Package callback encodes and decodes the inline-button payloads round-tripped
// through Telegram.
//
// Wire forms:
//
//	browse_<key>       open the duration menu for key
//	link_24_<key>      24 hour signed link for key
//	link_perm_<key>    permanent public link for key
//
// The prefix is fixed, so everything after it is the key verbatim; keys may
// contain '_'. When a payload would exceed Telegram's 64 byte limit the key is
// replaced by a reference token: ref_browse_<token>, ref_link_24_<token>,
// ref_link_perm_<token>, resolved through a RefStore.
package callback

import (
	"errors"
	"strings"
)

// MaxDataLen is Telegram's limit for callback_data, in bytes.
const MaxDataLen = 64

// Action is what the button asks for.
type Action string

const (
	ActionBrowse Action = "browse"
	ActionLink   Action = "link"
)

// Duration is the validity of a requested link.
type Duration string

const (
	DurationTemporary Duration = "temporary"
	DurationPermanent Duration = "permanent"
)

var (
	// ErrUnrecognized is returned for payloads that match no known form.
	ErrUnrecognized = errors.New("callback: unrecognized payload")
	// ErrExpired is returned for reference payloads whose token is unknown or expired.
	ErrExpired = errors.New("callback: reference expired")
)

// Payload is the decoded form of a button's callback data.
type Payload struct {
	Action   Action
	Duration Duration // set for ActionLink only
	Key      string
}

// Browse returns the payload that opens the duration menu for key.
func Browse(key string) Payload {
	return Payload{Action: ActionBrowse, Key: key}
}

// Link returns the payload that requests a link of duration d for key.
func Link(d Duration, key string) Payload {
	return Payload{Action: ActionLink, Duration: d, Key: key}
}

const (
	prefixBrowse   = "browse_"
	prefixLink24   = "link_24_"
	prefixLinkPerm = "link_perm_"
	prefixRef      = "ref_"
)

func (p Payload) prefix() (string, bool) {
	switch p.Action {
	case ActionBrowse:
		return prefixBrowse, true
	case ActionLink:
		switch p.Duration {
		case DurationTemporary:
			return prefixLink24, true
		case DurationPermanent:
			return prefixLinkPerm, true
		}
	}
	return "", false
}

// Codec converts payloads to and from callback data.
type Codec struct {
	refs *RefStore
}

// NewCodec returns a Codec. refs may be nil, in which case long keys are
// encoded inline and Telegram will reject the button.
func NewCodec(refs *RefStore) *Codec {
	return &Codec{refs: refs}
}

// Encode returns the callback data for p.
func (c *Codec) Encode(p Payload) (string, error) {
	prefix, ok := p.prefix()
	if !ok || p.Key == "" {
		return "", ErrUnrecognized
	}
	data := prefix + p.Key
	if len(data) <= MaxDataLen || c.refs == nil {
		return data, nil
	}
	return prefixRef + prefix + c.refs.Put(p.Key), nil
}

// Decode parses callback data. Unknown forms yield ErrUnrecognized; reference
// forms whose token cannot be resolved yield ErrExpired.
func (c *Codec) Decode(data string) (Payload, error) {
	if rest, ok := strings.CutPrefix(data, prefixRef); ok {
		p, err := parseInline(rest)
		if err != nil {
			return Payload{}, err
		}
		if c.refs == nil {
			return Payload{}, ErrExpired
		}
		key, ok := c.refs.Get(p.Key)
		if !ok {
			return Payload{}, ErrExpired
		}
		p.Key = key
		return p, nil
	}
	return parseInline(data)
}

func parseInline(data string) (Payload, error) {
	var p Payload
	var key string
	var ok bool
	switch {
	case strings.HasPrefix(data, prefixBrowse):
		key, ok = strings.CutPrefix(data, prefixBrowse)
		p = Browse(key)
	case strings.HasPrefix(data, prefixLink24):
		key, ok = strings.CutPrefix(data, prefixLink24)
		p = Link(DurationTemporary, key)
	case strings.HasPrefix(data, prefixLinkPerm):
		key, ok = strings.CutPrefix(data, prefixLinkPerm)
		p = Link(DurationPermanent, key)
	}
	if !ok || key == "" {
		return Payload{}, ErrUnrecognized
	}
	return p, nil
}
