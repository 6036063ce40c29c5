package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/han-qiu/binsize/internal/program"
)

// JSONStub is a text-format ingester for test fixtures and for exercising
// the Sink interface without a real object file: symbols, their source
// files, refs, and the entry point spelled out directly as JSON. The
// format has no vmaddr-to-file-offset mappings, so AddFileMapping is never
// called and the vtable scanner finds no data objects to read.
type JSONStub struct{}

type jsonDump struct {
	Objects []jsonObject `json:"objects"`
	Files   []jsonFile   `json:"files,omitempty"`
	Entry   string       `json:"entry"`
}

type jsonObject struct {
	Name string   `json:"name"`
	Addr uint64   `json:"addr"`
	Size uint64   `json:"size"`
	Data bool     `json:"data,omitempty"`
	File string   `json:"file,omitempty"`
	Refs []string `json:"refs,omitempty"`
}

type jsonFile struct {
	Name             string `json:"name"`
	SourceLineWeight uint64 `json:"source_line_weight,omitempty"`
}

// CanParse reports whether r looks like the JSON stub format: it decodes
// as an object with a non-null "objects" key.
func (JSONStub) CanParse(r io.Reader) bool {
	buf := make([]byte, 1024)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	if n == 0 {
		return false
	}
	var probe struct {
		Objects json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(buf[:n], &probe); err != nil {
		return false
	}
	return probe.Objects != nil
}

// Parse decodes the JSON dump and replays it into sink in two passes: all
// files and objects (with their file associations) first, then refs, so a
// ref may name an object defined later in the file.
func (JSONStub) Parse(r io.Reader, sink program.Sink) error {
	var dump jsonDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return fmt.Errorf("decode json dump: %w", err)
	}

	for _, f := range dump.Files {
		file := sink.GetFile(f.Name)
		file.SourceLineWeight = f.SourceLineWeight
	}

	for i, o := range dump.Objects {
		if o.Name == "" {
			return fmt.Errorf("object at index %d missing name", i)
		}
		obj := sink.AddObject(o.Name, o.Addr, o.Size, o.Data)
		if o.File != "" {
			obj.File = sink.GetFile(o.File)
		}
	}

	for _, o := range dump.Objects {
		from := sink.FindObjectByName(o.Name)
		for _, refName := range o.Refs {
			to := sink.FindObjectByName(refName)
			if to == nil {
				continue
			}
			sink.AddRef(from, to)
		}
	}

	if dump.Entry != "" {
		if entry := sink.FindObjectByName(dump.Entry); entry != nil {
			sink.SetEntryPoint(entry)
		}
	}

	return nil
}

func init() {
	Register(JSONStub{})
}
