package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// entityTypeLine is the JSONL form of an entity-type mapping.
type entityTypeLine struct {
	Name string           `json:"name"`
	Type types.EntityType `json:"type"`
}

// loadJSONL registers one definition per line. Blank lines are ignored;
// malformed lines and unknown kinds are skipped and counted.
func (l *Loader) loadJSONL(raw []byte, path string) Summary {
	var s Summary
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := l.applyLine(line, &s); err != nil {
			s.Skipped++
			l.log.WithFields(logrus.Fields{
				"file":  filepath.Base(path),
				"line":  lineNo,
				"error": err,
			}).Warn("skipping definition line")
		}
	}
	return s
}

func (l *Loader) applyLine(line []byte, s *Summary) error {
	if !gjson.ValidBytes(line) {
		return errMalformed
	}
	var m Manifest
	switch kind := gjson.GetBytes(line, "kind").String(); kind {
	case KindProperty:
		var p types.PropertyDefinition
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		m.Properties = append(m.Properties, p)
	case KindComponent:
		var c types.ComponentDefinition
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		m.Components = append(m.Components, c)
	case KindModel:
		var md types.ModelDefinition
		if err := json.Unmarshal(line, &md); err != nil {
			return err
		}
		m.Models = append(m.Models, md)
	case KindEntityType:
		var et entityTypeLine
		if err := json.Unmarshal(line, &et); err != nil {
			return err
		}
		m.EntityTypes = map[string]types.EntityType{et.Name: et.Type}
	default:
		return &unknownKindError{kind: kind}
	}

	got, err := l.apply(m)
	if err != nil {
		return err
	}
	if got.Skipped > 0 {
		return errRejected
	}
	s.add(got)
	return nil
}
