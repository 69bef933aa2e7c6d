package apk

import (
	"iter"
	"regexp"
)

var (
	// primaryDexPattern matches root-level dex entries: classes.dex, classes2.dex, ...
	primaryDexPattern = regexp.MustCompile(`^classes[0-9]*\.dex$`)

	// anyDexPattern also accepts dex entries nested in directories.
	anyDexPattern = regexp.MustCompile(`(^|/)classes[0-9]*\.dex$`)
)

// Label classifies an entry name.
type Label string

// Entry labels.
const (
	LabelPrimaryPayload Label = "primary-payload"
	LabelOther          Label = "other"
)

// IsPrimaryDex reports whether name is a root-level classes[N].dex entry.
// The match is case-sensitive and N, if present, consists of digits only.
func IsPrimaryDex(name string) bool {
	return primaryDexPattern.MatchString(name)
}

// Classify returns the label for name.
func Classify(name string) Label {
	if IsPrimaryDex(name) {
		return LabelPrimaryPayload
	}
	return LabelOther
}

// DexNames returns an iterator over the primary dex entries, in archive order.
// Each iteration re-scans the index.
func (a *Archive) DexNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range a.idx.Names() {
			if !IsPrimaryDex(name) {
				continue
			}
			if !yield(name) {
				return
			}
		}
	}
}

// IsMultiDex reports whether the archive holds more than one dex entry.
//
// Unlike DexNames, entries nested in directories (e.g., "lib/classes2.dex")
// count toward the total.
func (a *Archive) IsMultiDex() bool {
	n := 0
	for _, name := range a.idx.Names() {
		if anyDexPattern.MatchString(name) {
			n++
			if n > 1 {
				return true
			}
		}
	}
	return false
}

// Dex returns the content of classes.dex.
// It returns nil and no error when the archive has no classes.dex.
func (a *Archive) Dex() ([]byte, error) {
	const mainDex = "classes.dex"
	if !a.Contains(mainDex) {
		return nil, nil
	}
	return a.Read(mainDex)
}

// DexFile is the content of one primary dex entry.
type DexFile struct {
	Name string
	Data []byte
	Err  error
}

// AllDex returns an iterator that reads each primary dex entry as it is
// pulled. A read failure is carried in DexFile.Err and does not end the
// iteration.
func (a *Archive) AllDex() iter.Seq[DexFile] {
	return func(yield func(DexFile) bool) {
		for name := range a.DexNames() {
			data, err := a.Read(name)
			if !yield(DexFile{Name: name, Data: data, Err: err}) {
				return
			}
		}
	}
}
