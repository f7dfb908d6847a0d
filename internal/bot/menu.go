package bot

import (
	"errors"
	"fmt"

	"github.com/memohai/bucketlink/internal/callback"
)

// Button is one inline keyboard button.
type Button struct {
	Label   string
	Payload string
}

// Menu is a message with an inline keyboard, one slice per row.
type Menu struct {
	Text string
	Rows [][]Button
}

// Buttons returns the number of buttons across all rows.
func (m Menu) Buttons() int {
	n := 0
	for _, row := range m.Rows {
		n += len(row)
	}
	return n
}

// Menu texts and labels.
const (
	FileMenuText     = "📂 Select a file to generate a new link:"
	DurationMenuText = "Choose the validity period:"
	LabelTemporary   = "24 Hours"
	LabelPermanent   = "Always Available"
)

// ErrEmptyMenu is returned when asked to render a file menu with no keys.
var ErrEmptyMenu = errors.New("file menu needs at least one key")

// Presenter renders menus, encoding payloads with its codec.
type Presenter struct {
	codec *callback.Codec
}

// NewPresenter returns a Presenter.
func NewPresenter(codec *callback.Codec) *Presenter {
	return &Presenter{codec: codec}
}

// RenderFileMenu returns one row per key in the given order.
func (p *Presenter) RenderFileMenu(keys []string) (Menu, error) {
	if len(keys) == 0 {
		return Menu{}, ErrEmptyMenu
	}
	rows := make([][]Button, 0, len(keys))
	for _, key := range keys {
		data, err := p.codec.Encode(callback.Browse(key))
		if err != nil {
			return Menu{}, fmt.Errorf("encode %q: %w", key, err)
		}
		rows = append(rows, []Button{{Label: key, Payload: data}})
	}
	return Menu{Text: FileMenuText, Rows: rows}, nil
}

// RenderDurationMenu returns the two-row validity menu for key.
func (p *Presenter) RenderDurationMenu(key string) (Menu, error) {
	temporary, err := p.codec.Encode(callback.Link(callback.DurationTemporary, key))
	if err != nil {
		return Menu{}, fmt.Errorf("encode %q: %w", key, err)
	}
	permanent, err := p.codec.Encode(callback.Link(callback.DurationPermanent, key))
	if err != nil {
		return Menu{}, fmt.Errorf("encode %q: %w", key, err)
	}
	return Menu{
		Text: DurationMenuText,
		Rows: [][]Button{
			{{Label: LabelTemporary, Payload: temporary}},
			{{Label: LabelPermanent, Payload: permanent}},
		},
	}, nil
}
