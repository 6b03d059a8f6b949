package room

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk room list. JSON documents parse the same way.
type Document struct {
	Rooms []Room `yaml:"rooms" json:"rooms"`
}

// Parse decodes a YAML or JSON room document and validates it.
func Parse(r io.Reader) ([]Room, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("room document is empty")
		}
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	if err := Join(ValidateAll(doc.Rooms)); err != nil {
		return nil, err
	}
	return doc.Rooms, nil
}

// Load reads and parses the room document at path.
func Load(path string) ([]Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	rooms, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rooms, nil
}

// Marshal encodes rooms as a YAML document.
func Marshal(rooms []Room) ([]byte, error) {
	return yaml.Marshal(Document{Rooms: rooms})
}
