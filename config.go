package kaleido

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted scene-graph record. An absent Stage block falls
// back to the built-in default properties on load.
type Config struct {
	Stage  *StageConfig  `json:"stage,omitempty" toml:"stage,omitempty"`
	Scenes []SceneRecord `json:"scenes,omitempty" toml:"scenes,omitempty"`
}

// StageConfig carries stage-level properties in a config.
type StageConfig struct {
	Properties StagePatch `json:"properties" toml:"properties"`
}

// SceneRecord is a scene's serialized form: its properties, its ordered
// displays and effects, and its scene-level reactors.
type SceneRecord struct {
	Properties ScenePropsRecord `json:"properties" toml:"properties"`
	Displays   []ElementRecord  `json:"displays,omitempty" toml:"displays,omitempty"`
	Effects    []ElementRecord  `json:"effects,omitempty" toml:"effects,omitempty"`
	Reactors   Reactors         `json:"reactors,omitempty" toml:"reactors,omitempty"`
}

// ScenePropsRecord is the wire shape of scene properties. Absent fields keep
// their defaults on load.
type ScenePropsRecord struct {
	Name      *string  `json:"name,omitempty" toml:"name,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty" toml:"opacity,omitempty"`
	BlendMode *string  `json:"blendMode,omitempty" toml:"blendMode,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty" toml:"enabled,omitempty"`
}

// ElementRecord describes one display or effect: its registered type name,
// its opaque property record, and its reactors. The element's enabled state
// travels inside the property record.
type ElementRecord struct {
	Name       string         `json:"name" toml:"name"`
	Properties map[string]any `json:"properties,omitempty" toml:"properties,omitempty"`
	Reactors   Reactors       `json:"reactors,omitempty" toml:"reactors,omitempty"`
}

// --- Serialization ---

// Serialize emits the scene's properties, elements, and reactors.
func (s *Scene) Serialize() SceneRecord {
	name := s.name
	opacity := s.props.Opacity
	blend := s.props.BlendMode.String()
	enabled := s.props.Enabled
	rec := SceneRecord{
		Properties: ScenePropsRecord{
			Name:      &name,
			Opacity:   &opacity,
			BlendMode: &blend,
			Enabled:   &enabled,
		},
		Reactors: cloneReactors(s.reactors),
	}
	for _, d := range s.displays {
		rec.Displays = append(rec.Displays, serializeElement(d))
	}
	for _, fx := range s.effects {
		rec.Effects = append(rec.Effects, serializeElement(fx))
	}
	return rec
}

func serializeElement(e Element) ElementRecord {
	props := e.Properties()
	if props == nil {
		props = map[string]any{}
	}
	props["enabled"] = e.Enabled()
	return ElementRecord{
		Name:       e.Name(),
		Properties: props,
		Reactors:   cloneReactors(e.Reactors()),
	}
}

// SaveConfig emits the full stage configuration: stage properties plus every
// scene in order.
func (st *Stage) SaveConfig() Config {
	return Config{
		Stage:  &StageConfig{Properties: st.props.Patch()},
		Scenes: st.SceneData(),
	}
}

// SaveConfigFile writes the configuration to path, as TOML for a .toml
// extension and indented JSON otherwise.
func (st *Stage) SaveConfigFile(path string) error {
	cfg := st.SaveConfig()
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}

// --- Loading ---

// LoadConfig replaces the stage's scene graph with the configuration in the
// given JSON payload. A payload whose top-level value is not an object fails
// with a validation error before any mutation happens; json.Unmarshal alone
// is not enough since it treats a bare null as a no-op. Unknown component
// type names are logged and skipped; the load continues.
func (st *Stage) LoadConfig(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("invalid stage config: top-level value is not an object")
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid stage config: %w", err)
	}
	st.ApplyConfig(cfg)
	return nil
}

// LoadConfigFile loads a configuration from path, decoded as TOML for a
// .toml extension and JSON otherwise. Decoding happens before any mutation.
func (st *Stage) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("invalid stage config %s: %w", path, err)
		}
		st.ApplyConfig(cfg)
		return nil
	}
	if err := st.LoadConfig(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyConfig replaces the stage's scene graph with an already-decoded
// configuration: existing scenes are cleared, described scenes are rebuilt
// with their components and reactors, and stage properties are applied (or
// reset to defaults when the config has no stage block).
func (st *Stage) ApplyConfig(cfg Config) {
	st.ClearScenes()

	for _, srec := range cfg.Scenes {
		name := ""
		if srec.Properties.Name != nil {
			name = *srec.Properties.Name
		}
		sc := NewScene(name)
		sc.Update(scenePatchFromRecord(srec.Properties))
		st.AddScene(sc)

		for _, erec := range srec.Displays {
			loadElement(sc, Displays, erec)
		}
		for _, erec := range srec.Effects {
			loadElement(sc, Effects, erec)
		}
		for key, ref := range srec.Reactors {
			sc.SetReactor(key, ref)
		}
		sc.ResetChanges()
	}

	if cfg.Stage != nil {
		st.Update(cfg.Stage.Properties)
	} else {
		st.Update(DefaultStageProps().Patch())
	}
	st.changed = true
}

// scenePatchFromRecord converts a wire record into a scene patch. An
// unrecognized blend mode name is logged and left unchanged.
func scenePatchFromRecord(rec ScenePropsRecord) ScenePatch {
	patch := ScenePatch{
		Opacity: rec.Opacity,
		Enabled: rec.Enabled,
	}
	if rec.BlendMode != nil {
		if mode, ok := ParseBlendMode(*rec.BlendMode); ok {
			patch.BlendMode = &mode
		} else {
			slog.Warn("unknown blend mode, keeping default", "blendMode", *rec.BlendMode)
		}
	}
	return patch
}

// loadElement resolves a component record against a registry, instantiates
// it, and adds it to the scene with its reactors. A name the registry does
// not know, or a factory failure, skips that one component without aborting
// the load.
func loadElement(sc *Scene, reg *Registry, rec ElementRecord) {
	factory, ok := reg.Resolve(rec.Name)
	if !ok {
		slog.Warn("unknown component type, skipping",
			"kind", reg.kind, "name", rec.Name, "scene", sc.Name())
		return
	}
	el, err := factory(rec.Properties)
	if err != nil {
		slog.Warn("component failed to build, skipping",
			"kind", reg.kind, "name", rec.Name, "scene", sc.Name(), "error", err)
		return
	}
	if enabled, ok := propBool(rec.Properties, "enabled"); ok {
		el.SetEnabled(enabled)
	}
	sc.AddElement(el)
	for key, ref := range rec.Reactors {
		el.SetReactor(key, ref)
	}
	el.ResetChanges()
}
