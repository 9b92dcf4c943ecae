package discord

import (
	"fmt"
	"strings"
)

const ComponentIDPrefix = "c:"

type ComponentIDSource string
type ComponentIDAction string

type ComponentID struct {
	// Source is the original context, ie: "settings"
	Source ComponentIDSource

	// Action is what the component should do, ie: "export_srt"
	Action ComponentIDAction

	// Ref optionally points at the object the action applies to, ie: a
	// transcription id
	Ref string
}

var (
	ErrComponentIDInvalidPrefix = fmt.Errorf("invalid component id prefix")
	ErrComponentIDInvalidParts  = fmt.Errorf("incorrect number of parts in component id")
)

func ParseComponentID(id string) (*ComponentID, error) {
	id, found := strings.CutPrefix(id, ComponentIDPrefix)
	if !found {
		return nil, ErrComponentIDInvalidPrefix
	}

	parts := strings.SplitN(id, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrComponentIDInvalidParts
	}

	parsedID := &ComponentID{
		Source: ComponentIDSource(parts[0]),
		Action: ComponentIDAction(parts[1]),
	}
	if len(parts) == 3 {
		parsedID.Ref = parts[2]
	}

	return parsedID, nil
}

func (c *ComponentID) String() string {
	parts := []string{
		string(c.Source),
		string(c.Action),
	}
	if c.Ref != "" {
		parts = append(parts, c.Ref)
	}
	return ComponentIDPrefix + strings.Join(parts, ":")
}

func ComponentIDString(source ComponentIDSource, action ComponentIDAction) string {
	componentID := &ComponentID{
		Source: source,
		Action: action,
	}
	return componentID.String()
}

func ComponentIDStringWithRef(source ComponentIDSource, action ComponentIDAction, ref string) string {
	componentID := &ComponentID{
		Source: source,
		Action: action,
		Ref:    ref,
	}
	return componentID.String()
}
