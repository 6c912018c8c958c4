package prism

import (
	"bytes"
	"reflect"
	"runtime"
	"strconv"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// DepthFormat is the depth attachment format used by every render pipeline.
const DepthFormat = wgpu.TextureFormatDepth32Float

type WindowState struct {
	// glfw
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	Resized      bool
}

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

func createGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps GLFW window into a wgpu surface.
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	// allocates the device and command queue
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Main Device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	// defines how the swapchain behaves (size, format, vsync)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      preferredSurfaceFormat(caps.Formats),
		Width:       uint32(s.WindowWidth),
		Height:      uint32(s.WindowHeight),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}

	surface.Configure(adapter, device, &surfaceConfig)

	gpuState := &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
	gpuState.recreateDepthTexture()
	return gpuState
}

// preferredSurfaceFormat picks an sRGB swapchain format when the surface
// offers one.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

// reconfigure resizes the swapchain and depth attachment after a window
// resize.
func (gpuState *GpuState) reconfigure(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	gpuState.surfaceConfig.Width = uint32(width)
	gpuState.surfaceConfig.Height = uint32(height)
	gpuState.surface.Configure(gpuState.adapter, gpuState.device, gpuState.surfaceConfig)
	gpuState.recreateDepthTexture()
}

func (gpuState *GpuState) recreateDepthTexture() {
	if gpuState.depthView != nil {
		gpuState.depthView.Release()
	}
	if gpuState.depthTexture != nil {
		gpuState.depthTexture.Release()
	}

	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              gpuState.surfaceConfig.Width,
			Height:             gpuState.surfaceConfig.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	gpuState.depthTexture = texture
	gpuState.depthView = view
}

// compiledShader pairs the vertex and fragment modules of a pipeline. GLSL
// sources compile to one module per stage with entry point "main"; a WGSL
// source compiles to a single module with vs_main/fs_main.
type compiledShader struct {
	vertex        *wgpu.ShaderModule
	fragment      *wgpu.ShaderModule
	vertexEntry   string
	fragmentEntry string
}

func compileShader(asset *ShaderAsset, gpuState *GpuState) compiledShader {
	switch asset.Kind {
	case ShaderKindGlsl:
		vertex, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: asset.Name + " Vertex Shader",
			GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
				Code:        asset.VertexSource,
				ShaderStage: wgpu.ShaderStageVertex,
			},
		})
		if err != nil {
			panic(err)
		}
		fragment, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: asset.Name + " Fragment Shader",
			GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
				Code:        asset.FragmentSource,
				ShaderStage: wgpu.ShaderStageFragment,
			},
		})
		if err != nil {
			panic(err)
		}
		return compiledShader{
			vertex:        vertex,
			fragment:      fragment,
			vertexEntry:   "main",
			fragmentEntry: "main",
		}

	case ShaderKindWgsl:
		module, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          asset.Name + " Shader",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: asset.Source},
		})
		if err != nil {
			panic(err)
		}
		return compiledShader{
			vertex:        module,
			fragment:      module,
			vertexEntry:   "vs_main",
			fragmentEntry: "fs_main",
		}
	}
	panic("unknown shader kind: " + strconv.Itoa(int(asset.Kind)))
}

func (s compiledShader) release() {
	if s.vertex == s.fragment {
		s.vertex.Release()
		return
	}
	s.vertex.Release()
	s.fragment.Release()
}

func createRenderPipeline(name string, shader compiledShader, vertexType any, gpuState *GpuState) *wgpu.RenderPipeline {
	vertexBufferLayout := createVertexBufferLayout(vertexType)

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: name,
		Vertex: wgpu.VertexState{
			Module:     shader.vertex,
			EntryPoint: shader.vertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader.fragment,
			EntryPoint: shader.fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

func createVertexIndexBuffers(vertices AnySlice, indices []uint32, device *wgpu.Device) (vertexBuf *wgpu.Buffer, indexBuf *wgpu.Buffer) {
	vertexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer",
		Contents: untypedSliceToWgpuBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		panic(err)
	}
	indexBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		panic(err)
	}
	return vertexBuf, indexBuf
}

func createTextureFromAsset(txAsset *TextureAsset, gpuState *GpuState) *wgpu.TextureView {
	textureExtent := wgpu.Extent3D{
		Width:              txAsset.Width,
		Height:             txAsset.Height,
		DepthOrArrayLayers: 1,
	}
	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         txAsset.Name,
		Size:          textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		txAsset.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  txAsset.Width * 4,
			RowsPerImage: txAsset.Height,
		},
		&textureExtent,
	)
	if err != nil {
		panic(err)
	}
	return textureView
}

func createSampler(name string, filter string, wrapMode string, gpuState *GpuState) *wgpu.Sampler {
	addressMode := wgpuWrapMode(wrapMode)
	filterMode := wgpuFilterMode(filter)
	sampler, err := gpuState.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         name + " Sampler",
		AddressModeU:  addressMode,
		AddressModeV:  addressMode,
		AddressModeW:  addressMode,
		MagFilter:     filterMode,
		MinFilter:     filterMode,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}
	return sampler
}

func createBuffer(name string, data any, gpuState *GpuState, usage wgpu.BufferUsage) *wgpu.Buffer {
	buffer, err := gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name,
		Contents: toBufferBytes(data),
		Usage:    usage,
	})
	if err != nil {
		panic(err)
	}
	return buffer
}

// createUniformBuffer creates a per-frame writable uniform buffer.
func createUniformBuffer(name string, data any, gpuState *GpuState) *wgpu.Buffer {
	return createBuffer(name, data, gpuState, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

func writeBuffer(buffer *wgpu.Buffer, data any, gpuState *GpuState) {
	if err := gpuState.queue.WriteBuffer(buffer, 0, toBufferBytes(data)); err != nil {
		panic(err)
	}
}

func toBufferBytes(data any) []byte {
	if raw, ok := data.([]byte); ok {
		return raw
	}
	val := reflect.ValueOf(data)
	buf := new(bytes.Buffer)
	readUniformsBytes(val, buf)
	return buf.Bytes()
}

func createVertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("Vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64 = 0

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if "layout" == field.Tag.Get("prism") {
			format := parseFormat(field.Tag.Get("format"))
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if nil != err {
				panic(err)
			}

			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         format,
			})
		}

		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

// createBindGroups builds one bind group per group id from the pipeline's
// auto layout.
func createBindGroups(groupedBindings map[uint32][]wgpu.BindGroupEntry, pipeline *wgpu.RenderPipeline, device *wgpu.Device) map[uint32]*wgpu.BindGroup {
	bindGroups := map[uint32]*wgpu.BindGroup{}
	for groupId, bindings := range groupedBindings {
		bindGroupLayout := pipeline.GetBindGroupLayout(groupId)

		bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout:  bindGroupLayout,
			Entries: bindings,
		})
		bindGroupLayout.Release()
		if err != nil {
			panic(err)
		}
		bindGroups[groupId] = bindGroup
	}
	return bindGroups
}

// AnySlice erases the element type of a slice while keeping enough shape
// information to upload it to the GPU.
type AnySlice struct {
	value reflect.Value
}

func MakeAnySlice(slice any) AnySlice {
	v := reflect.ValueOf(slice)
	if v.Kind() != reflect.Slice {
		panic("MakeAnySlice: argument must be a slice")
	}
	return AnySlice{value: v}
}

func (s AnySlice) Len() int {
	return s.value.Len()
}

func (s AnySlice) ElementSize() int {
	return int(s.value.Type().Elem().Size())
}

func (s AnySlice) DataPointer() unsafe.Pointer {
	return s.value.UnsafePointer()
}

func untypedSliceToWgpuBytes(src AnySlice) []byte {
	l := src.Len()
	if l == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(src.DataPointer()), l*src.ElementSize())
}
