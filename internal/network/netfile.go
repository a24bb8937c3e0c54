package network

import (
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidNetFile indicates a malformed network document.
var ErrInvalidNetFile = errors.New("invalid network file")

// Load reads a network document of the form
//
//	{"elements":[{"id":"J1","kind":"junction","attributes":{"x":"0"}}]}
func Load(r io.Reader) (*Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading network: %w", err)
	}
	return Parse(data)
}

// Parse decodes a network document.
func Parse(data []byte) (*Network, error) {
	if len(data) == 0 {
		return New(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidNetFile)
	}

	elements := gjson.GetBytes(data, "elements")
	if elements.Exists() && !elements.IsArray() {
		return nil, fmt.Errorf("%w: elements must be an array", ErrInvalidNetFile)
	}

	n := New()
	var parseErr error
	elements.ForEach(func(idx, value gjson.Result) bool {
		id := value.Get("id").String()
		if id == "" {
			parseErr = fmt.Errorf("%w: element %d has no id", ErrInvalidNetFile, idx.Int())
			return false
		}
		el := &Element{
			ID:         id,
			Kind:       Kind(value.Get("kind").String()),
			Attributes: make(map[string]string),
		}
		value.Get("attributes").ForEach(func(k, v gjson.Result) bool {
			el.Attributes[k.String()] = v.String()
			return true
		})
		if err := n.Add(el); err != nil {
			parseErr = fmt.Errorf("%w: %v", ErrInvalidNetFile, err)
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return n, nil
}

// Marshal encodes the network with elements sorted by ID.
func (n *Network) Marshal() ([]byte, error) {
	doc := []byte(`{"elements":[]}`)
	for _, id := range n.IDs() {
		el, ok := n.Get(id)
		if !ok {
			continue
		}
		obj, err := sjson.SetBytes([]byte(`{}`), "id", el.ID)
		if err != nil {
			return nil, err
		}
		if obj, err = sjson.SetBytes(obj, "kind", string(el.Kind)); err != nil {
			return nil, err
		}
		if obj, err = sjson.SetBytes(obj, "attributes", el.Attributes); err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, "elements.-1", obj); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Save writes the network document to w.
func (n *Network) Save(w io.Writer) error {
	data, err := n.Marshal()
	if err != nil {
		return fmt.Errorf("encoding network: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing network: %w", err)
	}
	return nil
}
