// Package kaleido is a real-time scene compositing engine for [Ebitengine].
//
// Kaleido owns an ordered collection of independently rendered scenes,
// tracks which of them changed since the last frame, composites each scene's
// output into a single frame through configurable blending, and serializes
// the whole scene graph for persistence.
//
// # Quick start
//
// Create a [Stage], add scenes with displays and effects, and drive
// [Stage.Render] from your [ebiten.Game]:
//
//	stage := kaleido.NewStage("main")
//
//	scene := kaleido.NewScene("")
//	scene.AddElement(kaleido.NewGradientDisplay(
//		kaleido.Color{R: 0.1, G: 0.2, B: 0.5, A: 1}, kaleido.ColorBlack))
//	stage.AddScene(scene)
//
//	type Game struct{ stage *kaleido.Stage }
//
//	func (g *Game) Update() error { return nil }
//	func (g *Game) Draw(screen *ebiten.Image) {
//		g.stage.Init(screen)
//		g.stage.Render(kaleido.FrameData{})
//	}
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// The stage is single-threaded: run every operation (scene mutation, resize,
// zoom, config load, render) on the thread that drives the frame loop.
//
// # Scenes, displays, and effects
//
// A [Scene] renders its displays in order into its own [Buffer], runs its
// effect chain over the result, and hands the buffer to the stage's
// [Composer], which blends it into the frame using the scene's opacity and
// [BlendMode].
//
// Displays and effects register by name in the [Displays] and [Effects]
// registries; configs refer to them by those names, and unknown names are
// skipped with a warning rather than failing the load.
//
// # Persistence
//
// [Stage.SaveConfigFile] and [Stage.LoadConfigFile] round-trip the scene
// graph as JSON or TOML. [Stage.Serialize] emits the stage's own record for
// embedding in larger documents.
//
// [Ebitengine]: https://ebitengine.org
package kaleido
