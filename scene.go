package twig

import "github.com/go-gl/mathgl/mgl64"

// Renderer is the rendering collaborator. It is told when renderables enter
// and leave the scene; it never owns them.
type Renderer interface {
	AddToScene(n *Node)
	RemoveFromScene(n *Node)
}

// Scene is the top-level object that owns the node tree, the entity
// registry, and the animation sequencer.
type Scene struct {
	root      *Node
	registry  *Registry
	sequencer *Sequencer
	renderer  Renderer
	meshes    MeshFactory
}

// NewScene creates a new scene with a pre-created root group, an empty
// registry, and an idle sequencer.
func NewScene() *Scene {
	return &Scene{
		root:      NewGroup("root"),
		registry:  NewRegistry(),
		sequencer: NewSequencer(),
	}
}

// Root returns the scene's root group.
func (s *Scene) Root() *Node {
	return s.root
}

// Registry returns the scene's entity registry.
func (s *Scene) Registry() *Registry {
	return s.registry
}

// Sequencer returns the scene's animation sequencer.
func (s *Scene) Sequencer() *Sequencer {
	return s.sequencer
}

// SetRenderer sets the optional rendering collaborator.
func (s *Scene) SetRenderer(r Renderer) {
	s.renderer = r
}

// SetMeshFactory sets the optional factory that turns meshes into renderer
// resources when they enter the scene.
func (s *Scene) SetMeshFactory(f MeshFactory) {
	s.meshes = f
}

// Update advances animations by dt seconds and refreshes world transforms.
// Call it once per frame.
func (s *Scene) Update(dt float64) {
	s.sequencer.Tick(dt)
	updateWorldTransform(s.root, mgl64.Ident4(), 1, false)
}

// Add attaches n under the root, creates renderer resources for its meshes,
// and notifies the renderer.
func (s *Scene) Add(n *Node) {
	s.root.AddChild(n)
	if s.meshes != nil {
		n.Walk(func(c *Node) {
			if c.Mesh != nil && c.Mesh.Handle == nil {
				c.Mesh.Handle = s.meshes.CreateMesh(c.Mesh, c.Material)
			}
		})
	}
	if s.renderer != nil {
		s.renderer.AddToScene(n)
	}
}

// Remove detaches n from the tree and notifies the renderer. n is not
// disposed and may be re-added.
func (s *Scene) Remove(n *Node) {
	if n.Parent == nil {
		return
	}
	if s.renderer != nil {
		s.renderer.RemoveFromScene(n)
	}
	n.RemoveFromParent()
}

// Destroy cancels every clip animating n or its descendants, removes n from
// the scene, releases renderer resources, and disposes the subtree.
func (s *Scene) Destroy(n *Node) {
	if n.IsDisposed() {
		return
	}
	s.sequencer.CancelTarget(n)
	s.Remove(n)
	if s.meshes != nil {
		n.Walk(func(c *Node) {
			if c.Mesh != nil && c.Mesh.Handle != nil {
				s.meshes.DisposeMesh(c.Mesh.Handle)
			}
		})
	}
	n.Dispose()
}
