package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/miekg/dns"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"gopkg.in/yaml.v3"
)

var (
	// ErrFileNotFound the input file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrMalformed the input file cannot be parsed or contains invalid entries.
	ErrMalformed = errors.New("malformed file")
)

// InputLoadError is returned when a user supplied input file cannot be loaded.
type InputLoadError struct {
	// Kind of the loaded input, like resolvers or domains.
	Kind string
	Path string
	Err  error
}

func (e *InputLoadError) Error() string {
	return fmt.Sprintf("error loading %s from '%s': %v", e.Kind, e.Path, e.Err)
}

func (e *InputLoadError) Unwrap() error {
	return e.Err
}

func readInput(kind, path string) ([]byte, error) {
	// nolint:gosec
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &InputLoadError{Kind: kind, Path: path, Err: ErrFileNotFound}
	}
	if err != nil {
		return nil, &InputLoadError{Kind: kind, Path: path, Err: err}
	}
	return data, nil
}

func malformed(kind, path, format string, args ...any) error {
	return &InputLoadError{Kind: kind, Path: path, Err: fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadResolvers loads resolvers from JSON or YAML (.yaml, .yml) file. The file contains either a list
// of {name, ip} objects or an object with such list under the "resolvers" key.
func LoadResolvers(path string) ([]dnsbench.Resolver, error) {
	const kind = "resolvers"
	data, err := readInput(kind, path)
	if err != nil {
		return nil, err
	}

	unmarshal := json.Unmarshal
	if isYAML(path) {
		unmarshal = yaml.Unmarshal
	}

	var list []dnsbench.Resolver
	if err := unmarshal(data, &list); err != nil {
		var doc struct {
			Resolvers []dnsbench.Resolver `json:"resolvers" yaml:"resolvers"`
		}
		if err := unmarshal(data, &doc); err != nil {
			return nil, malformed(kind, path, "%v", err)
		}
		list = doc.Resolvers
	}

	if len(list) == 0 {
		return nil, malformed(kind, path, "no resolvers")
	}
	for i, r := range list {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.IP) == "" {
			return nil, malformed(kind, path, "resolver #%d must have both name and ip", i+1)
		}
	}
	return list, nil
}

// LoadDomains loads domains from a text file with one domain per line, empty lines and lines starting with #
// are ignored. Files with .json extension contain a list of domains or an object with such list under the
// "domains" key.
func LoadDomains(path string) ([]string, error) {
	const kind = "domains"
	data, err := readInput(kind, path)
	if err != nil {
		return nil, err
	}

	var list []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &list); err != nil {
			var doc struct {
				Domains []string `json:"domains"`
			}
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, malformed(kind, path, "%v", err)
			}
			list = doc.Domains
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			list = append(list, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, malformed(kind, path, "%v", err)
		}
	}

	if len(list) == 0 {
		return nil, malformed(kind, path, "no domains")
	}
	for i, d := range list {
		d = strings.TrimSpace(d)
		if _, ok := dns.IsDomainName(d); !ok || d == "" || strings.ContainsAny(d, " \t") {
			return nil, malformed(kind, path, "invalid domain '%s'", d)
		}
		list[i] = d
	}
	return list, nil
}
