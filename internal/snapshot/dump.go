package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/toyz/descres/internal/models"
)

// Dump renders a bundle as a snapshot document without classes. The
// output is deterministic so two dumps can be compared line by line.
func Dump(bundle *models.Bundle) ([]byte, error) {
	s := Snapshot{
		Version: SchemaVersion,
		Bundle:  bundle.Name,
	}
	for _, d := range bundle.Components() {
		doc, err := componentDoc(d)
		if err != nil {
			return nil, err
		}
		s.Components = append(s.Components, doc)
	}
	for _, i := range bundle.Interceptors() {
		s.Interceptors = append(s.Interceptors, InterceptorDoc{
			Class:     i.Class,
			Callbacks: callbackDocs(&i.CallbackTrait),
		})
	}
	for _, b := range bundle.InterceptorBindings() {
		s.Bindings = append(s.Bindings, BindingDoc{
			Component:      b.Component,
			Interceptors:   b.Interceptors,
			Method:         b.Method,
			Constructor:    b.Constructor,
			ExcludeDefault: b.ExcludeDefault,
			Source:         b.Source.String(),
		})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&s); err != nil {
		return nil, fmt.Errorf("failed to encode bundle %s: %w", bundle.Name, err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func componentDoc(d *models.ComponentDescriptor) (ComponentDoc, error) {
	doc := ComponentDoc{
		Name:                     d.Name,
		Class:                    d.Class,
		SessionType:              d.SessionType().String(),
		Placeholder:              d.Placeholder,
		MappedName:               d.MappedName,
		Description:              d.Description,
		MessageListenerInterface: d.MessageListenerInterface,
		Concurrency:              string(d.Concurrency),
		NoInterfaceClasses:       d.NoInterfaceClasses,
		Remote:                   d.RemoteInterfaces(),
		Local:                    d.LocalInterfaces(),
		RemoteHome:               d.RemoteHome,
		RemoteComponent:          d.RemoteComponent,
		LocalHome:                d.LocalHome,
		LocalComponent:           d.LocalComponent,
		WebServiceEndpoint:       d.WebServiceEndpoint,
		TimeoutMethod:            d.TimeoutMethod,
		DependsOn:                d.DependsOn,
		Callbacks:                callbackDocs(&d.CallbackTrait),
	}
	switch d.Kind {
	case models.UnknownKind:
	case models.UnsupportedKind:
		doc.Kind = d.KindName
	default:
		doc.Kind = d.Kind.String()
	}
	if d.LocalBean {
		doc.LocalBean = &d.LocalBean
	}
	if d.InitOnStartup {
		doc.InitOnStartup = &d.InitOnStartup
	}

	for _, kind := range models.AttributeKinds() {
		for _, o := range d.OverrideList(kind) {
			var value yaml.Node
			if err := value.Encode(o.Value); err != nil {
				return ComponentDoc{}, fmt.Errorf("component %s: %s override of %s: %w", d.Name, kind, o.Method, err)
			}
			doc.Overrides = append(doc.Overrides, OverrideDoc{
				Attribute: kind.String(),
				Method:    o.Method,
				Value:     value,
				Source:    o.Source.String(),
			})
		}
	}
	return doc, nil
}

func callbackDocs(trait *models.CallbackTrait) map[string][]models.Callback {
	var docs map[string][]models.Callback
	for _, kind := range models.LifecycleKinds() {
		cbs := trait.Callbacks(kind)
		if len(cbs) == 0 {
			continue
		}
		if docs == nil {
			docs = make(map[string][]models.Callback)
		}
		docs[kind.String()] = cbs
	}
	return docs
}

// Diff returns a unified diff between two dumps, empty when they match
func Diff(before, after []byte) string {
	if bytes.Equal(before, after) {
		return ""
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(before)),
		B:        splitLinesKeepNL(string(after)),
		FromFile: "external",
		ToFile:   "resolved",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return fmt.Sprintf("--- external\n+++ resolved\n@@ diff unavailable: %v @@\n", err)
	}
	return s
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
