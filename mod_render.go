package prism

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Textures are downscaled to this bound on load. Every adapter tier the
// surface targets guarantees at least this much.
const maxTextureDim = 8192

type renderMesh struct {
	name         string
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

// renderState holds the GPU objects built from the project manifest: one
// pipeline, its uniform buffers and bind groups, and the mesh buffers.
type renderState struct {
	pipeline   *wgpu.RenderPipeline
	bindGroups map[uint32]*wgpu.BindGroup
	bindOrder  []uint32

	cameraBuffer    *wgpu.Buffer
	timeBuffer      *wgpu.Buffer
	customBuffer    *wgpu.Buffer
	baseColorBuffer *wgpu.Buffer

	meshes     []renderMesh
	clearColor wgpu.Color

	// CustomParams and BaseColor are uploaded every frame, so mutating them
	// at runtime takes effect on the next frame.
	CustomParams mgl32.Vec4
	BaseColor    mgl32.Vec4
}

// RenderModule builds the render pipeline described by the Project resource
// and drives the per-frame uniform upload and draw. It must be installed
// after ClientModule, AssetServerModule and ProjectModule.
type RenderModule struct{}

func (RenderModule) Install(app *App, cmd *Commands) {
	ensureSingleInstall(app, "render")

	gpuState := Resource[GpuState](app)
	server := Resource[AssetServer](app)
	project := Resource[Project](app)
	if gpuState == nil || server == nil || project == nil {
		panic("RenderModule needs ClientModule, AssetServerModule and ProjectModule installed first")
	}

	loadProjectAssets(project, server)

	shaderAsset, ok := server.ShaderByName(project.Pipeline.Shader)
	if !ok {
		panic(fmt.Sprintf("pipeline shader %q is not loaded", project.Pipeline.Shader))
	}

	var vertexType any = ModelVertex{}
	if project.Pipeline.Shader == BuiltinShaderFlat {
		vertexType = ColorVertex{}
	}

	shader := compileShader(shaderAsset, gpuState)
	pipeline := createRenderPipeline(project.Name, shader, vertexType, gpuState)
	shader.release()

	if len(server.Meshes()) == 0 {
		// Nothing to draw from the manifest; give the shader a canvas.
		if project.Pipeline.Shader == BuiltinShaderFlat {
			server.CreateColorQuadMesh("quad", 2)
		} else {
			server.CreatePlaneMesh("plane", 4)
		}
	}

	baseColor, err := project.Pipeline.Params.parseBaseColor()
	if err != nil {
		panic(err)
	}
	clearColor, err := project.Viewport.parseClearColor()
	if err != nil {
		panic(err)
	}

	state := &renderState{
		pipeline:     pipeline,
		clearColor:   clearColor,
		CustomParams: mgl32.Vec4(project.Pipeline.Params.Custom),
		BaseColor:    baseColor,
	}
	state.cameraBuffer = createUniformBuffer("Camera Uniform", CameraUniform{}, gpuState)
	state.timeBuffer = createUniformBuffer("Time Uniform", TimeUniform{}, gpuState)
	state.customBuffer = createUniformBuffer("Custom Uniform", state.CustomParams, gpuState)
	state.baseColorBuffer = createUniformBuffer("Base Color Uniform", state.BaseColor, gpuState)

	grouped := map[uint32][]wgpu.BindGroupEntry{}
	for _, group := range project.SortedBindGroups() {
		state.bindOrder = append(state.bindOrder, group.Set)
		switch group.Kind {
		case BindKindCamera:
			grouped[group.Set] = uniformEntry(state.cameraBuffer)
		case BindKindTime:
			grouped[group.Set] = uniformEntry(state.timeBuffer)
		case BindKindCustom:
			grouped[group.Set] = uniformEntry(state.customBuffer)
		case BindKindBaseColor:
			grouped[group.Set] = uniformEntry(state.baseColorBuffer)
		case BindKindTexture:
			txAsset, ok := server.TextureByName(group.Texture)
			if !ok {
				panic(fmt.Sprintf("texture %q is not loaded", group.Texture))
			}
			view := createTextureFromAsset(txAsset, gpuState)
			sampler := createSampler(txAsset.Name, txAsset.Filter, txAsset.Wrap, gpuState)
			grouped[group.Set] = []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view},
				{Binding: 1, Sampler: sampler},
			}
		}
	}
	state.bindGroups = createBindGroups(grouped, pipeline, gpuState.device)

	for _, mesh := range server.Meshes() {
		vertexBuf, indexBuf := createVertexIndexBuffers(mesh.Vertices, mesh.Indices, gpuState.device)
		state.meshes = append(state.meshes, renderMesh{
			name:         mesh.Name,
			vertexBuffer: vertexBuf,
			indexBuffer:  indexBuf,
			indexCount:   uint32(len(mesh.Indices)),
		})
	}

	cmd.AddResources(state)

	app.UseSystem(
		System(uploadUniformsSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
}

// loadProjectAssets pulls every shader, model and texture the manifest names
// into the asset server. Load failures abort startup.
func loadProjectAssets(project *Project, server *AssetServer) {
	for _, shader := range project.Shaders {
		var err error
		switch shader.Type {
		case "glsl":
			_, err = server.LoadGlslShader(shader.Name, shader.Vertex, shader.Fragment)
		case "wgsl":
			_, err = server.LoadWgslShader(shader.Name, shader.Path)
		}
		if err != nil {
			panic(err)
		}
	}

	for _, model := range project.Models {
		if _, err := server.LoadObjMesh(model.Path); err != nil {
			panic(err)
		}
	}

	for _, texture := range project.Textures {
		filter := texture.Filter
		if filter == "" {
			filter = "linear"
		}
		wrap := texture.Wrap
		if wrap == "" {
			wrap = "wrap"
		}
		if _, err := server.LoadTexture(texture.Name, texture.Path, filter, wrap, maxTextureDim); err != nil {
			panic(err)
		}
	}
}

func uniformEntry(buffer *wgpu.Buffer) []wgpu.BindGroupEntry {
	return []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buffer, Size: wgpu.WholeSize},
	}
}

func uploadUniformsSystem(state *renderState, cam *Camera, timeResource *Time, gpuState *GpuState) {
	writeBuffer(state.cameraBuffer, cam.Uniform(), gpuState)
	writeBuffer(state.timeBuffer, TimeUniform{Time: timeResource.Elapsed()}, gpuState)
	writeBuffer(state.customBuffer, state.CustomParams, gpuState)
	writeBuffer(state.baseColorBuffer, state.BaseColor, gpuState)
}

func renderSystem(state *renderState, gpuState *GpuState, window *WindowState) {
	nextTexture, err := gpuState.surface.GetCurrentTexture()
	if err != nil {
		// Lost or outdated surface. Reconfigure and try again next frame.
		gpuState.reconfigure(window.WindowWidth, window.WindowHeight)
		return
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()

	encoder, err := gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: state.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            gpuState.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer renderPass.Release()

	renderPass.SetPipeline(state.pipeline)
	for _, set := range state.bindOrder {
		renderPass.SetBindGroup(set, state.bindGroups[set], nil)
	}
	for _, mesh := range state.meshes {
		renderPass.SetVertexBuffer(0, mesh.vertexBuffer, 0, wgpu.WholeSize)
		renderPass.SetIndexBuffer(mesh.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		renderPass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
	if err := renderPass.End(); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpuState.queue.Submit(cmdBuffer)
	gpuState.surface.Present()
}
