package cli

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// JSON views served by the inspection API

type bundleView struct {
	Name          string `json:"name"`
	PassID        string `json:"passId"`
	Components    int    `json:"components"`
	Interceptors  int    `json:"interceptors"`
	Processed     int    `json:"processed"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
	NotApplicable int    `json:"notApplicable"`
	Abandoned     bool   `json:"abandoned"`
	Duration      string `json:"duration"`
}

type overrideView struct {
	Attribute string `json:"attribute"`
	Method    string `json:"method"`
	Value     string `json:"value"`
	Source    string `json:"source"`
}

type componentView struct {
	Name                     string              `json:"name"`
	Class                    string              `json:"class,omitempty"`
	Type                     string              `json:"type"`
	Placeholder              bool                `json:"placeholder,omitempty"`
	MappedName               string              `json:"mappedName,omitempty"`
	Description              string              `json:"description,omitempty"`
	MessageListenerInterface string              `json:"messageListenerInterface,omitempty"`
	Concurrency              string              `json:"concurrencyManagement,omitempty"`
	Remote                   []string            `json:"remote,omitempty"`
	Local                    []string            `json:"local,omitempty"`
	LocalBean                bool                `json:"localBean,omitempty"`
	NoInterfaceClasses       []string            `json:"noInterfaceClasses,omitempty"`
	RemoteHome               string              `json:"remoteHome,omitempty"`
	LocalHome                string              `json:"localHome,omitempty"`
	TimeoutMethod            string              `json:"timeoutMethod,omitempty"`
	InitOnStartup            bool                `json:"initOnStartup,omitempty"`
	DependsOn                []string            `json:"dependsOn,omitempty"`
	Callbacks                map[string][]string `json:"callbacks,omitempty"`
	Overrides                []overrideView      `json:"overrides,omitempty"`
	Fixed                    []string            `json:"fixed,omitempty"`
}

type interceptorView struct {
	Class     string              `json:"class"`
	Callbacks map[string][]string `json:"callbacks,omitempty"`
}

type bindingView struct {
	Component      string   `json:"component"`
	Interceptors   []string `json:"interceptors,omitempty"`
	Method         string   `json:"method,omitempty"`
	Constructor    bool     `json:"constructor,omitempty"`
	ExcludeDefault bool     `json:"excludeDefault,omitempty"`
	Source         string   `json:"source"`
}

type findingView struct {
	Severity  string `json:"severity"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Element   string `json:"element,omitempty"`
	Marker    string `json:"marker,omitempty"`
	Component string `json:"component,omitempty"`
}

func newBundleView(res *Resolution) bundleView {
	r := res.Result
	return bundleView{
		Name:          res.Bundle.Name,
		PassID:        r.PassID,
		Components:    len(res.Bundle.Components()),
		Interceptors:  len(res.Bundle.Interceptors()),
		Processed:     r.Processed,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		NotApplicable: r.NotApplicable,
		Abandoned:     r.Abandoned,
		Duration:      r.Duration.String(),
	}
}

func newComponentView(d *models.ComponentDescriptor) componentView {
	v := componentView{
		Name:                     d.Name,
		Class:                    d.Class,
		Type:                     d.TypeName(),
		Placeholder:              d.Placeholder,
		MappedName:               d.MappedName,
		Description:              d.Description,
		MessageListenerInterface: d.MessageListenerInterface,
		Concurrency:              string(d.Concurrency),
		Remote:                   d.RemoteInterfaces(),
		Local:                    d.LocalInterfaces(),
		LocalBean:                d.LocalBean,
		NoInterfaceClasses:       d.NoInterfaceClasses,
		RemoteHome:               d.RemoteHome,
		LocalHome:                d.LocalHome,
		InitOnStartup:            d.InitOnStartup,
		DependsOn:                d.DependsOn,
		Callbacks:                callbackViews(&d.CallbackTrait),
	}
	if d.TimeoutMethod != nil {
		v.TimeoutMethod = d.TimeoutMethod.String()
	}
	for _, kind := range models.AttributeKinds() {
		for _, o := range d.OverrideList(kind) {
			v.Overrides = append(v.Overrides, overrideView{
				Attribute: kind.String(),
				Method:    o.Method.String(),
				Value:     fmt.Sprint(o.Value),
				Source:    o.Source.String(),
			})
		}
	}
	for _, f := range d.FixedFields() {
		v.Fixed = append(v.Fixed, string(f))
	}
	sort.Strings(v.Fixed)
	return v
}

func callbackViews(trait *models.CallbackTrait) map[string][]string {
	var views map[string][]string
	for _, kind := range models.LifecycleKinds() {
		for _, cb := range trait.Callbacks(kind) {
			if views == nil {
				views = make(map[string][]string)
			}
			views[kind.String()] = append(views[kind.String()], cb.Class+"."+cb.Method)
		}
	}
	return views
}

func newInterceptorView(i *models.InterceptorDescriptor) interceptorView {
	return interceptorView{Class: i.Class, Callbacks: callbackViews(&i.CallbackTrait)}
}

func newBindingView(b *models.InterceptorBinding) bindingView {
	v := bindingView{
		Component:      b.Component,
		Interceptors:   b.Interceptors,
		Constructor:    b.Constructor,
		ExcludeDefault: b.ExcludeDefault,
		Source:         b.Source.String(),
	}
	if b.Method != nil {
		v.Method = b.Method.String()
	}
	return v
}

func newFindingViews(result *processor.Result, lang language.Tag) []findingView {
	views := make([]findingView, 0, result.Findings.Count())
	for _, f := range result.Findings.All() {
		views = append(views, newFindingView(f, lang))
	}
	return views
}

func newFindingView(f *errors.Finding, lang language.Tag) findingView {
	return findingView{
		Severity:  f.Severity.String(),
		Code:      f.Code.String(),
		Message:   f.Localize(lang),
		Element:   f.Element,
		Marker:    f.Marker,
		Component: f.Component,
	}
}
