package devtools

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Generator is the base for artifact generators. It accumulates output
// in a buffer between Begin and End, and defers errors so callers can
// chain emission without checking after every write.
type Generator struct {
	Config *Data
	OutDir string
	Err    error
	buf    bytes.Buffer
	writer *bufio.Writer
}

func (gen *Generator) GetConfigString(k string, defaultValue string) string {
	if gen.Config == nil || !gen.Config.Has(k) {
		return defaultValue
	}
	return gen.Config.GetString(k)
}

func (gen *Generator) GetConfigBool(k string, defaultValue bool) bool {
	if gen.Config == nil || !gen.Config.Has(k) {
		return defaultValue
	}
	return gen.Config.GetBool(k)
}

func (gen *Generator) Emit(s string) {
	if gen.Err == nil && gen.writer != nil {
		_, gen.Err = gen.writer.WriteString(s)
	}
}

func (gen *Generator) Emitf(format string, args ...interface{}) {
	gen.Emit(fmt.Sprintf(format, args...))
}

func (gen *Generator) Begin() {
	if gen.Err != nil {
		return
	}
	gen.buf.Reset()
	gen.writer = bufio.NewWriter(&gen.buf)
}

func (gen *Generator) End() string {
	if gen.Err != nil || gen.writer == nil {
		return ""
	}
	gen.writer.Flush()
	return gen.buf.String()
}

func (gen *Generator) WriteFile(path string, content string) {
	if gen.Err != nil {
		return
	}
	if !gen.GetConfigBool("force-overwrite", true) && FileExists(path) {
		fmt.Printf("[%s already exists, not overwriting]\n", path)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		gen.Err = err
		return
	}
	gen.Err = os.WriteFile(path, []byte(content), 0o644)
}

func (gen *Generator) EmitTemplate(name string, tmplSource string, data interface{}, funcMap template.FuncMap) {
	if gen.Err != nil {
		return
	}
	tmpl, err := template.New(name).Funcs(funcMap).Parse(tmplSource)
	if err != nil {
		gen.Err = err
		return
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		gen.Err = err
		return
	}
	gen.Emit(b.String())
}
