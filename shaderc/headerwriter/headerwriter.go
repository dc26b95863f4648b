package headerwriter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/ashaderc/shaderc/layout"
)

/**
 * @brief Emits a C++ header exposing the binding and set numbers of every
 * descriptor as named constants, grouped per technique, so application
 * code never has to hard-code the numbers the shader reflection assigned.
 *
 * A writer created with an empty path is a no-op: every method returns
 * immediately and the rest of the pipeline is unaffected.
 */
type Writer struct {
	f         *os.File
	w         *bufio.Writer
	path      string
	namespace string
}

// New creates a header writer for outFolder/relPath. An empty relPath
// yields a no-op writer. A non-empty namespace wraps all declarations in
// a single named C++ namespace.
func New(outFolder, relPath, namespace string) (*Writer, error) {
	if relPath == "" {
		return &Writer{}, nil
	}
	path := filepath.Join(outFolder, relPath)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	hw := &Writer{
		f:         f,
		w:         bufio.NewWriter(f),
		path:      path,
		namespace: namespace,
	}
	fmt.Fprintf(hw.w, "/* auto-generated by ashaderc, do not edit */\n")
	fmt.Fprintf(hw.w, "#pragma once\n\n")
	if namespace != "" {
		fmt.Fprintf(hw.w, "namespace %s {\n\n", namespace)
	}
	return hw, nil
}

// Enabled reports whether a header file is actually being written.
func (hw *Writer) Enabled() bool {
	return hw.f != nil
}

// Path returns the full path of the header file, or "" for a no-op writer.
func (hw *Writer) Path() string {
	return hw.path
}

// BeginTechnique opens the namespace block for one technique.
func (hw *Writer) BeginTechnique(name string) {
	if hw.f == nil {
		return
	}
	fmt.Fprintf(hw.w, "namespace %s {\n", sanitizeIdentifier(name))
}

// WriteDescriptor emits the <resource>_Set and <resource>_Binding constants
// for one descriptor.
func (hw *Writer) WriteDescriptor(d layout.Descriptor, set uint32) {
	if hw.f == nil {
		return
	}
	name := sanitizeIdentifier(d.Name)
	fmt.Fprintf(hw.w, "  constexpr int %s_Set = %d;\n", name, set)
	fmt.Fprintf(hw.w, "  constexpr int %s_Binding = %d;\n", name, d.Binding)
}

// EndTechnique closes the technique's namespace block.
func (hw *Writer) EndTechnique() {
	if hw.f == nil {
		return
	}
	fmt.Fprintf(hw.w, "}\n\n")
}

// Finalize closes the optional outer namespace and the file.
func (hw *Writer) Finalize() error {
	if hw.f == nil {
		return nil
	}
	if hw.namespace != "" {
		fmt.Fprintf(hw.w, "} // namespace %s\n", hw.namespace)
	}
	if err := hw.w.Flush(); err != nil {
		hw.f.Close()
		return err
	}
	return hw.f.Close()
}

// sanitizeIdentifier maps a reflection resource name onto a valid C++
// identifier. Reflection names are already identifier-like in the common
// case; anything else degrades to underscores.
func sanitizeIdentifier(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
