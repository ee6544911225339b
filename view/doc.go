// Package view draws twig scenes with Ebitengine.
//
// [Renderer] implements both twig.Renderer and twig.MeshFactory: it hands out
// a handle per mesh, projects every visible mesh through a perspective
// [Camera], shades faces with one directional light, and submits
// depth-sorted triangles with DrawTriangles. [Run] opens a window and drives
// Scene.Update once per tick.
//
//	scene := twig.NewScene()
//	cam := view.NewCamera(twig.Vec3{0, 5, 20}, twig.Vec3{0, 3, 0})
//	r := view.NewRenderer(cam)
//	view.Run(scene, r, view.RunConfig{Title: "twig", Width: 960, Height: 640})
package view
