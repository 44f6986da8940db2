package fileengine

import (
	"strings"

	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
)

// writable resolves h for a dictionary setter.
func (e *Engine) writable(h engine.Handle) (*file, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return nil, err
	}

	if err := fl.dictWritable(); err != nil {
		return nil, err
	}

	return fl, nil
}

func (e *Engine) FileAttributes(h engine.Handle) ([]engine.Attribute, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return nil, err
	}

	return attributes(fl.dict.Attributes), nil
}

func (e *Engine) SetFileAttributes(h engine.Handle, attrs []engine.Attribute) error {
	fl, err := e.writable(h)
	if err != nil {
		return err
	}

	if err := validAttributes(attrs); err != nil {
		return err
	}
	fl.dict.Attributes = attrRecords(attrs)

	return nil
}

// MultRespDefs returns the stored multiple-response definitions, or
// StatusNoMultResp when the file has none.
func (e *Engine) MultRespDefs(h engine.Handle) (string, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return "", err
	}

	if fl.dict.MultResp == "" {
		return "", format.StatusNoMultResp
	}

	return fl.dict.MultResp, nil
}

// SetMultRespDefs stores the definitions text. Each line must name a set
// with a "$" prefix followed by "=".
func (e *Engine) SetMultRespDefs(h engine.Handle, defs string) error {
	fl, err := e.writable(h)
	if err != nil {
		return err
	}

	for line := range strings.Lines(defs) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		name, _, ok := strings.Cut(line, "=")
		if !ok || len(name) < 2 || name[0] != '$' {
			return format.StatusInvalidMRSetDef
		}
	}
	fl.dict.MultResp = defs

	return nil
}

func (e *Engine) VariableSets(h engine.Handle) (string, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return "", err
	}

	if fl.dict.VarSets == "" {
		return "", format.StatusNoVarSets
	}

	return fl.dict.VarSets, nil
}

func (e *Engine) SetVariableSets(h engine.Handle, sets string) error {
	fl, err := e.writable(h)
	if err != nil {
		return err
	}

	for line := range strings.Lines(sets) {
		line = strings.TrimRight(line, "\r\n")
		if line != "" && !strings.Contains(line, "=") {
			return format.StatusInvalidVarSetDef
		}
	}
	fl.dict.VarSets = sets

	return nil
}

// CaseWeightVar returns the case weight variable, or StatusNoCaseWgt.
func (e *Engine) CaseWeightVar(h engine.Handle) (string, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return "", err
	}

	if fl.dict.CaseWeight == "" {
		return "", format.StatusNoCaseWgt
	}

	return fl.dict.CaseWeight, nil
}

// SetCaseWeightVar selects a numeric variable as the case weight.
func (e *Engine) SetCaseWeightVar(h engine.Handle, name string) error {
	fl, err := e.writable(h)
	if err != nil {
		return err
	}

	v, ok := fl.dict.lookup(name)
	if !ok {
		return format.StatusVarNotFound
	}

	if v.Type > 0 {
		return format.StatusInvalidCaseWgt
	}
	fl.dict.CaseWeight = v.Name

	return nil
}
