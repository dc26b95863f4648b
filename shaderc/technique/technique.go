package technique

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spaghettifunk/ashaderc/shaderc/core"
)

/** @brief Shader stages a technique entry point can target. */
type StageKind int

const (
	StageVertex StageKind = iota
	StageFragment
)

func (k StageKind) String() string {
	switch k {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown"
}

func StageKindFromString(s string) (StageKind, error) {
	switch s {
	case "vertex":
		return StageVertex, nil
	case "fragment":
		return StageFragment, nil
	}
	return 0, fmt.Errorf("string %s is not a valid StageKind", s)
}

/** @brief A single stage entry point of a technique. */
type EntryPoint struct {
	Kind StageKind
	Name string
}

/**
 * @brief One named shader program variant extracted from annotated source.
 * Created once per directive block during parsing and immutable afterwards.
 */
type Technique struct {
	/** @brief The technique name, unique within a source file. */
	Name string
	/** @brief Stage entry points in order of appearance. At least one. */
	EntryPoints []EntryPoint
	/** @brief Preprocessor defines passed verbatim to compilation. */
	Defines map[string]string
	/** @brief Define names in first-appearance order. */
	DefineKeys []string
	/** @brief Opaque user metadata persisted into the .pipeline file. */
	Metadata map[string]string
	/** @brief Metadata keys in first-appearance order. */
	MetadataKeys []string
}

// Directive markers. Directives live in line comments so the shader source
// stays valid without this tool:
//
//	//T: Name            start a technique block
//	//E: vertex VSMain   add an entry point
//	//D: NAME [value]    add a preprocessor define
//	//M: key value       add a user metadata pair
//
// A technique block ends at the next //T: or end of file. Later D/M
// directives with an already-seen key overwrite the earlier value.
const (
	markerTechnique  = "T:"
	markerEntryPoint = "E:"
	markerDefine     = "D:"
	markerMetadata   = "M:"
)

// Parse scans annotated shader source and extracts techniques in order of
// appearance. file is used for error reporting only.
func Parse(file string, source []byte) ([]Technique, error) {
	scanner := bufio.NewScanner(bytes.NewReader(source))

	var techniques []Technique
	var current *Technique
	seen := make(map[string]bool)
	lineNo := 0

	fail := func(msg string, args ...interface{}) error {
		return &core.ParseError{File: file, Line: lineNo, Msg: fmt.Sprintf(msg, args...)}
	}

	flush := func() error {
		if current == nil {
			return nil
		}
		if len(current.EntryPoints) == 0 {
			return fail("technique %q has no entry points", current.Name)
		}
		techniques = append(techniques, *current)
		current = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "//") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "//"))

		switch {
		case strings.HasPrefix(rest, markerTechnique):
			if err := flush(); err != nil {
				return nil, err
			}
			name := strings.TrimSpace(strings.TrimPrefix(rest, markerTechnique))
			if name == "" {
				return nil, fail("technique directive is missing a name")
			}
			if strings.ContainsAny(name, " \t") {
				return nil, fail("technique name %q must be a single identifier", name)
			}
			if seen[name] {
				return nil, fail("technique %q declared twice", name)
			}
			seen[name] = true
			current = &Technique{
				Name:     name,
				Defines:  make(map[string]string),
				Metadata: make(map[string]string),
			}

		case strings.HasPrefix(rest, markerEntryPoint):
			if current == nil {
				return nil, fail("entry point directive outside of a technique block")
			}
			fields := strings.Fields(strings.TrimPrefix(rest, markerEntryPoint))
			if len(fields) != 2 {
				return nil, fail("entry point directive expects '<stage> <function>'")
			}
			kind, err := StageKindFromString(fields[0])
			if err != nil {
				return nil, fail("unknown stage keyword %q", fields[0])
			}
			current.EntryPoints = append(current.EntryPoints, EntryPoint{Kind: kind, Name: fields[1]})

		case strings.HasPrefix(rest, markerDefine):
			if current == nil {
				return nil, fail("define directive outside of a technique block")
			}
			fields := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(rest, markerDefine)), " ", 2)
			if fields[0] == "" {
				return nil, fail("define directive is missing a macro name")
			}
			value := ""
			if len(fields) == 2 {
				value = strings.TrimSpace(fields[1])
			}
			if _, exists := current.Defines[fields[0]]; !exists {
				current.DefineKeys = append(current.DefineKeys, fields[0])
			}
			current.Defines[fields[0]] = value

		case strings.HasPrefix(rest, markerMetadata):
			if current == nil {
				return nil, fail("metadata directive outside of a technique block")
			}
			fields := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(rest, markerMetadata)), " ", 2)
			if len(fields) != 2 || fields[0] == "" {
				return nil, fail("metadata directive expects '<key> <value>'")
			}
			key, value := fields[0], strings.TrimSpace(fields[1])
			if _, exists := current.Metadata[key]; !exists {
				current.MetadataKeys = append(current.MetadataKeys, key)
			}
			current.Metadata[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return techniques, nil
}
