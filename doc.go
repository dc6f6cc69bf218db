// Package canvas is a retained-mode 2D UI layer for GPU backends.
//
// Canvas keeps a tree of views, lays them out inside the window, packs every
// texture they draw into a shared multi-layer atlas and batches all of their
// quads into one vertex buffer and one index buffer. A frame is drawn with one
// DrawIndexed call per run of geometry on the same atlas layer. Nothing is
// rebuilt while the tree is unchanged.
//
// # Quick start
//
// The [ebitenbackend] package supplies a window, an input poller and a
// [Backend] built on [Ebitengine]:
//
//	r, _, err := ebitenbackend.NewRenderer(canvas.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	font, _ := canvas.NewOpenTypeFont(goregular.TTF, 0)
//	field := canvas.NewInputField("name", font)
//	field.SetSize(320, 40)
//	field.SetAlignment(canvas.AlignCenter)
//	r.AddView(field)
//	log.Fatal(ebitenbackend.Run(r, ebitenbackend.RunConfig{Title: "Form"}))
//
// For full control, feed input and call [Renderer.Update] and
// [Renderer.Draw] from your own loop.
//
// # Views
//
// Every view embeds [Base], which holds the tree links and the layout inputs:
// size ([FillParent] stretches along an axis), margins, [Alignment] and an
// offset applied after alignment. Root views are added with
// [Renderer.AddView]; subviews with [Base.AddSubview]. Later siblings paint
// on top and are hit-tested first.
//
// The built-in views are [Container], [Sprite], [Label] and [InputField].
// Custom views embed one of them, call [Base.Init] from their constructor and
// override Paint or HandleTouchEvent.
//
// # Touch dispatch
//
// A touch-down is offered to the views under the pointer, topmost first,
// until one reports it handled. The release goes to the same views as
// [TouchUpInside] or [TouchUpOutside], judged against each view's bounds
// clipped by its ancestors. Install an [EventSink] to observe every delivery;
// the ecs module forwards them into a Donburi world.
//
// # Rebuilds
//
// Setters mark the renderer dirty. The next Update lays out the tree,
// repaints views whose meshes are stale, packs new textures into the atlas
// (evicting textures the frame no longer uses when the atlas is capped) and
// batches the result into the back buffers before publishing them. A failed
// rebuild returns an error wrapping one of the package's sentinel errors and
// keeps the last published buffers.
//
// Logging goes through [log/slog]; see [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package canvas
