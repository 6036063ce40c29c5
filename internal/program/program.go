package program

import (
	"github.com/apex/log"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/demangle"
	"github.com/han-qiu/binsize/internal/namestrip"
	"github.com/han-qiu/binsize/internal/rangemap"
)

// Program is the container for all Objects and Files a parser ingests,
// plus the address indices and pretty-name bookkeeping AddObject needs.
type Program struct {
	Trace TraceConfig

	demangler demangle.Demangler
	onFatal   func(error)

	objects map[string]*Object
	files   map[string]*File

	objectsByAddr *rangemap.Map[*Object]
	fileOffsets   *rangemap.Map[uint64]

	// strippedPrettyNames maps a stripped name to the first Object that
	// claimed it. A nil value means the claim was already resolved to a
	// full demangled form by a later collision.
	strippedPrettyNames map[string]*Object

	nextID    ObjID
	totalSize uint64
	maxWeight uint64

	entry *Object
}

// New creates an empty Program using d to demangle symbols.
func New(d demangle.Demangler, trace TraceConfig) *Program {
	return &Program{
		Trace:               trace,
		demangler:           d,
		onFatal:             func(err error) { log.WithError(err).Fatal("binsize") },
		objects:             make(map[string]*Object),
		files:               make(map[string]*File),
		objectsByAddr:       rangemap.New[*Object](),
		fileOffsets:         rangemap.New[uint64](),
		strippedPrettyNames: make(map[string]*Object),
		nextID:              1,
	}
}

// SetFatalHandler overrides the handler invoked when the demangler fails
// mid-session. Production code lets it exit the process; tests inject a
// handler that records the error instead.
func (p *Program) SetFatalHandler(fn func(error)) { p.onFatal = fn }

// TotalSize returns the sum of all ingested object sizes.
func (p *Program) TotalSize() uint64 { return p.totalSize }

// NumObjects returns the number of distinct objects ingested.
func (p *Program) NumObjects() int { return len(p.objects) }

// IDBound returns an exclusive upper bound on assigned ObjIDs, sized for
// callers (e.g. the dominator pass) that need dense per-id arrays.
func (p *Program) IDBound() ObjID { return p.nextID }

// NumFiles returns the number of distinct files registered.
func (p *Program) NumFiles() int { return len(p.files) }

// HasFiles reports whether any file has been registered via GetFile.
func (p *Program) HasFiles() bool { return len(p.files) > 0 }

// Entry returns the designated entry-point Object, or nil if none was set.
func (p *Program) Entry() *Object { return p.entry }

// ForEachObject calls fn once per ingested Object.
func (p *Program) ForEachObject(fn func(*Object)) {
	for _, o := range p.objects {
		fn(o)
	}
}

// ForEachFile calls fn once per registered File.
func (p *Program) ForEachFile(fn func(*File)) {
	for _, f := range p.files {
		fn(f)
	}
}

// AddObject inserts or updates the Object named name. Every call
// contributes to total_size and reassigns id/vmaddr/size/data, even
// repeat calls for a name already present — this mirrors the reference
// implementation exactly rather than special-casing re-ingest.
func (p *Program) AddObject(name string, vmaddr, size uint64, data bool) *Object {
	if p.Trace.Watching(name) {
		log.WithField("symbol", name).
			WithField("vmaddr", vmaddr).
			WithField("size", size).
			Debug("adding object")
	}

	obj, exists := p.objects[name]
	if !exists {
		obj = &Object{Name: name}
		p.objects[name] = obj
	}

	obj.ID = p.nextID
	p.nextID++
	obj.VMAddr = vmaddr
	obj.Size = size
	obj.Data = data
	p.totalSize += size
	p.objectsByAddr.Add(vmaddr, size, obj)

	p.resolvePrettyName(obj)

	return obj
}

func (p *Program) resolvePrettyName(obj *Object) {
	demangled, err := p.demangler.Demangle(obj.Name)
	if err != nil {
		p.onFatal(binerr.FatalIO("demangle "+obj.Name, err))
		return
	}

	stripped, changed := namestrip.Strip(demangled)
	if !changed {
		obj.PrettyName = demangled
		return
	}

	prior, seen := p.strippedPrettyNames[stripped]
	if !seen {
		p.strippedPrettyNames[stripped] = obj
		obj.PrettyName = stripped
		return
	}

	// Collision: this object always gets the full form.
	obj.PrettyName = demangled

	if prior != nil {
		redemangled, err := p.demangler.Demangle(prior.Name)
		if err != nil {
			p.onFatal(binerr.FatalIO("demangle "+prior.Name, err))
			return
		}
		prior.PrettyName = redemangled
		p.strippedPrettyNames[stripped] = nil
	}
}

// AddFileMapping records that the virtual-address range
// [vmaddr, vmaddr+filesize) maps to file offset fileoff.
func (p *Program) AddFileMapping(vmaddr, fileoff, filesize uint64) {
	p.fileOffsets.Add(vmaddr, filesize, vmaddr-fileoff)
}

// TryGetFileOffset returns the file offset corresponding to vmaddr, or
// false if vmaddr is not covered by any AddFileMapping call.
func (p *Program) TryGetFileOffset(vmaddr uint64) (uint64, bool) {
	delta, ok := p.fileOffsets.TryGet(vmaddr)
	if !ok {
		return 0, false
	}
	return vmaddr - delta, true
}

// TryAddRef adds an edge from -> object-at(vmaddr) if from is non-nil and
// vmaddr resolves to a known object. A miss is a silent no-op: the vtable
// scanner relies on this to drop unresolved words.
func (p *Program) TryAddRef(from *Object, vmaddr uint64) {
	if from == nil {
		return
	}

	to, ok := p.objectsByAddr.TryGet(vmaddr)
	if !ok {
		return
	}

	if p.Trace.Watching(from.Name) {
		log.WithField("from", from.Name).WithField("to", to.Name).Debug("added ref")
	}

	from.AddRef(to)
	if from.File != nil && to.File != nil {
		from.File.AddRef(to.File)
	}
}

// AddRef adds a direct edge from -> to, used by the parser for
// disassembly-derived call/use edges.
func (p *Program) AddRef(from, to *Object) {
	if p.Trace.Watching(from.Name) {
		log.WithField("from", from.Name).WithField("to", to.Name).Debug("add ref")
	}
	from.AddRef(to)
	if from.File != nil && to.File != nil {
		from.File.AddRef(to.File)
	}
}

// GetFile returns the File named name, creating it if necessary.
func (p *Program) GetFile(name string) *File {
	f, ok := p.files[name]
	if !ok {
		f = &File{Name: name}
		p.files[name] = f
	}
	return f
}

// SetEntryPoint designates obj as the reachability root.
func (p *Program) SetEntryPoint(obj *Object) { p.entry = obj }

// FindObjectByName returns the Object named name, or nil.
func (p *Program) FindObjectByName(name string) *Object {
	return p.objects[name]
}

// FindObjectByAddr returns the Object whose range contains addr, or nil.
func (p *Program) FindObjectByAddr(addr uint64) *Object {
	obj, ok := p.objectsByAddr.TryGet(addr)
	if !ok {
		return nil
	}
	return obj
}

// MaxWeight returns the maximum weight computed during the last weight
// pass (entry.MaxWeight), or 0 if the weight pass has not run.
func (p *Program) MaxWeight() uint64 { return p.maxWeight }

// SetMaxWeight records the weight pass's global maximum, used by the
// dot-graph renderer for edge penwidth scaling.
func (p *Program) SetMaxWeight(w uint64) { p.maxWeight = w }
