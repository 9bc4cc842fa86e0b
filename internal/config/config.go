// Package config reads the endpoints file and the environment file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/klimozawr/klimozawr/internal/kzerr"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid endpoints file")
	ErrReadConfig    = errors.New("failed to read endpoints file")
	ErrReadEnv       = errors.New("failed to read environment file")
	ErrDuplicatedID  = errors.New("duplicated endpoint id")
)

// File is the structure of the endpoints file.
//
//	endpoints:
//	  - id: gateway
//	    address: 192.168.1.1
//	    degraded_to_down_secs: 60
type File struct {
	Endpoints []api.Endpoint `yaml:"endpoints"`
}

// Parse reads an endpoints file from r.
//
// Zero timing parameters are filled with the defaults, and then every endpoint is validated.
// All problems are reported at once as kzerr.Problems indexed by the position in the file.
func Parse(r io.Reader) ([]api.Endpoint, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, kzerr.New(ErrInvalidConfig, err, "invalid endpoints file")
	}

	problems := kzerr.Problems{What: ErrInvalidConfig, Section: "endpoints"}
	seen := make(map[string]int)
	endpoints := make([]api.Endpoint, 0, len(f.Endpoints))

	for i, ep := range f.Endpoints {
		ep = ep.WithDefaults()

		if err := ep.Validate(); err != nil {
			problems.Add(i, ep.ID, err)
			continue
		}
		if j, dup := seen[ep.ID]; dup {
			problems.Add(i, ep.ID, kzerr.New(ErrDuplicatedID, nil, "duplicated id; already used by endpoints[%d]", j))
			continue
		}
		seen[ep.ID] = i

		endpoints = append(endpoints, ep)
	}

	if err := problems.Err(); err != nil {
		return nil, err
	}
	return endpoints, nil
}

// Load reads the endpoints file at path.
func Load(path string) ([]api.Endpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kzerr.New(ErrReadConfig, err, "failed to read endpoints file")
	}
	defer f.Close()

	endpoints, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return endpoints, nil
}

// LoadEnv sets the variables in the environment file at path, without overriding existing ones.
// Empty path does nothing.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return kzerr.New(ErrReadEnv, err, "%s", path)
	}
	return nil
}
