package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
	"scene-viewer/scene"
)

const maxPointLights = 8

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
	Revision   uint64
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	log     core.Logger
	program uint32

	// Vertex transform uniforms
	mvpLoc   int32
	modelLoc int32

	// Lighting uniforms: ambient + directional
	ambientColorLoc   int32
	hasDirLightLoc    int32
	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32

	// Lighting uniforms: point lights
	pointLightCountLoc     int32
	pointLightPosLoc       [maxPointLights]int32
	pointLightColorLoc     [maxPointLights]int32
	pointLightIntensityLoc [maxPointLights]int32
	pointLightRangeLoc     [maxPointLights]int32

	cameraPosLoc int32

	// Material uniforms
	matColorLoc     int32
	matSpecularLoc  int32
	matShininessLoc int32
	matOpacityLoc   int32
	unlitLoc        int32
	colorTexLoc     int32
	hasTextureLoc   int32

	// Per-frame camera matrices, set by BeginFrame
	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4

	viewportW int32
	viewportH int32

	shaders      *shaderCache
	points       *pointRenderer
	pointsFailed bool
	panel        *panelRenderer
	panelFailed  bool

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 mvp;
uniform mat4 model;

out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;

void main() {
    vec4 worldPos = model * vec4(inPosition, 1.0);
    gl_Position   = mvp * vec4(inPosition, 1.0);
    fragNormal    = mat3(model) * inNormal;
    fragUV        = inUV;
    fragWorldPos  = worldPos.xyz;
}
` + "\x00"

// Blinn-Phong with ambient, one directional and up to 8 ranged point lights.
const fragSrc = `
#version 410 core
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;

out vec4 outColor;

uniform vec3  ambientColor;
uniform bool  hasDirLight;
uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;

#define MAX_POINT_LIGHTS 8
uniform int   pointLightCount;
uniform vec3  pointLightPos[MAX_POINT_LIGHTS];
uniform vec3  pointLightColor[MAX_POINT_LIGHTS];
uniform float pointLightIntensity[MAX_POINT_LIGHTS];
uniform float pointLightRange[MAX_POINT_LIGHTS];

uniform vec3 cameraPos;

uniform vec3  matColor;
uniform vec3  matSpecular;
uniform float matShininess;
uniform float matOpacity;
uniform bool  unlit;

uniform sampler2D colorTex;
uniform bool      hasTexture;

vec3 calcSpecular(vec3 N, vec3 L, vec3 V) {
    vec3 H = normalize(L + V);
    return matSpecular * pow(max(dot(N, H), 0.0), matShininess);
}

void main() {
    vec4 baseColor = vec4(matColor, matOpacity);
    if (hasTexture) {
        baseColor *= texture(colorTex, fragUV);
    }
    if (unlit) {
        outColor = baseColor;
        return;
    }

    vec3 N = normalize(fragNormal);
    if (!gl_FrontFacing) {
        N = -N;
    }
    vec3 V = normalize(cameraPos - fragWorldPos);
    vec3 color = ambientColor * baseColor.rgb;

    if (hasDirLight) {
        vec3  L   = normalize(-lightDir);
        float NdL = max(dot(N, L), 0.0);
        color += lightColor * lightIntensity * NdL * baseColor.rgb;
        if (NdL > 0.0) {
            color += lightColor * lightIntensity * calcSpecular(N, L, V);
        }
    }

    for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
        vec3  toLight = pointLightPos[i] - fragWorldPos;
        float dist    = length(toLight);
        float atten   = 1.0;
        if (pointLightRange[i] > 0.0) {
            float range = pointLightRange[i];
            atten = clamp(1.0 - (dist * dist) / (range * range), 0.0, 1.0);
            atten *= atten;
        }
        vec3  L   = normalize(toLight);
        float NdL = max(dot(N, L), 0.0);
        color += pointLightColor[i] * pointLightIntensity[i] * atten * NdL * baseColor.rgb;
        if (NdL > 0.0) {
            color += pointLightColor[i] * pointLightIntensity[i] * atten * calcSpecular(N, L, V);
        }
    }

    outColor = vec4(color, baseColor.a);
}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL and compiles the built-in programs.
// The window's GL context must be current on the calling goroutine.
func NewRenderer(log core.Logger) (*Renderer, error) {
	if log == nil {
		log = core.NopLogger{}
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	r := &Renderer{
		log:     log,
		program: prog,

		mvpLoc:   uniformLoc(prog, "mvp"),
		modelLoc: uniformLoc(prog, "model"),

		ambientColorLoc:   uniformLoc(prog, "ambientColor"),
		hasDirLightLoc:    uniformLoc(prog, "hasDirLight"),
		lightDirLoc:       uniformLoc(prog, "lightDir"),
		lightColorLoc:     uniformLoc(prog, "lightColor"),
		lightIntensityLoc: uniformLoc(prog, "lightIntensity"),

		pointLightCountLoc: uniformLoc(prog, "pointLightCount"),
		cameraPosLoc:       uniformLoc(prog, "cameraPos"),

		matColorLoc:     uniformLoc(prog, "matColor"),
		matSpecularLoc:  uniformLoc(prog, "matSpecular"),
		matShininessLoc: uniformLoc(prog, "matShininess"),
		matOpacityLoc:   uniformLoc(prog, "matOpacity"),
		unlitLoc:        uniformLoc(prog, "unlit"),
		colorTexLoc:     uniformLoc(prog, "colorTex"),
		hasTextureLoc:   uniformLoc(prog, "hasTexture"),

		view:     mgl32.Ident4(),
		proj:     mgl32.Ident4(),
		viewProj: mgl32.Ident4(),

		shaders:   newShaderCache(log),
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	for i := 0; i < maxPointLights; i++ {
		r.pointLightPosLoc[i] = uniformLoc(prog, fmt.Sprintf("pointLightPos[%d]", i))
		r.pointLightColorLoc[i] = uniformLoc(prog, fmt.Sprintf("pointLightColor[%d]", i))
		r.pointLightIntensityLoc[i] = uniformLoc(prog, fmt.Sprintf("pointLightIntensity[%d]", i))
		r.pointLightRangeLoc[i] = uniformLoc(prog, fmt.Sprintf("pointLightRange[%d]", i))
	}

	gl.UseProgram(prog)
	gl.Uniform1i(r.colorTexLoc, 0)

	return r, nil
}

// ── Viewport ──────────────────────────────────────────────────────────────────

// SetViewport updates the GL viewport to match the framebuffer size.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
}

// ── BeginFrame ────────────────────────────────────────────────────────────────

// BeginFrame clears the framebuffer and sets per-frame lighting and camera
// uniforms. Ambient lights sum; the first directional light is used; point
// lights beyond the eighth are ignored.
func (r *Renderer) BeginFrame(background core.Color, lights []*scene.Light, camPos mgl32.Vec3, view, proj mgl32.Mat4) {
	r.view = view
	r.proj = proj
	r.viewProj = proj.Mul4(view)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.DepthMask(true)
	gl.ClearColor(background.R, background.G, background.B, background.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.cameraPosLoc, camPos.X(), camPos.Y(), camPos.Z())

	var ambient mgl32.Vec3
	hasDir := false
	pointIdx := 0
	for _, l := range lights {
		if l == nil {
			continue
		}
		switch l.Type {
		case scene.LightAmbient:
			ambient = ambient.Add(l.Color.Vec3().Mul(l.Intensity))
		case scene.LightDirectional:
			if hasDir {
				continue
			}
			hasDir = true
			dir := l.Direction()
			gl.Uniform3f(r.lightDirLoc, dir.X(), dir.Y(), dir.Z())
			gl.Uniform3f(r.lightColorLoc, l.Color.R, l.Color.G, l.Color.B)
			gl.Uniform1f(r.lightIntensityLoc, l.Intensity)
		case scene.LightPoint:
			if pointIdx >= maxPointLights {
				continue
			}
			gl.Uniform3f(r.pointLightPosLoc[pointIdx], l.Position.X(), l.Position.Y(), l.Position.Z())
			gl.Uniform3f(r.pointLightColorLoc[pointIdx], l.Color.R, l.Color.G, l.Color.B)
			gl.Uniform1f(r.pointLightIntensityLoc[pointIdx], l.Intensity)
			gl.Uniform1f(r.pointLightRangeLoc[pointIdx], l.Range)
			pointIdx++
		}
	}

	gl.Uniform3f(r.ambientColorLoc, ambient.X(), ambient.Y(), ambient.Z())
	gl.Uniform1i(r.hasDirLightLoc, boolToInt32(hasDir))
	gl.Uniform1i(r.pointLightCountLoc, int32(pointIdx))
}

// ── DrawMesh ──────────────────────────────────────────────────────────────────

// DrawMesh draws a mesh with the given model matrix using the camera set by
// BeginFrame. Materials with a Shader are drawn with their own program.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, model mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyRenderState(mat)

	if mat.Shader != nil {
		if !r.shaders.use(mat.Shader, model, r.view, r.proj) {
			return
		}
	} else {
		mvp := r.viewProj.Mul4(model)
		gl.UseProgram(r.program)
		gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
		gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
		r.applyMaterial(mat)
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyRenderState(mat *scene.Material) {
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	if mat.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	} else {
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}
}

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matColorLoc, mat.Color.R, mat.Color.G, mat.Color.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)

	opacity := float32(1)
	if mat.Transparent {
		opacity = mat.Opacity
	}
	gl.Uniform1f(r.matOpacityLoc, opacity)
	gl.Uniform1i(r.unlitLoc, boolToInt32(mat.Unlit))

	if tex := r.ensureTexture(mat.Map); tex != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.HasIndices {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	r.shaders.destroy()
	if r.points != nil {
		r.points.destroy()
	}
	if r.panel != nil {
		r.panel.destroy()
	}
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// ensureUploaded uploads mesh data on first use and re-uploads the vertex
// buffer whenever the mesh revision moves.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		if gpu.Revision != mesh.Revision {
			stride := int(unsafe.Sizeof(core.Vertex{}))
			gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
			gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*stride, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)
			gl.BindBuffer(gl.ARRAY_BUFFER, 0)
			gpu.Revision = mesh.Revision
		}
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
		Revision:   mesh.Revision,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ensureTexture uploads tex on first use. A texture that fails to upload
// is logged and drawn as untextured.
func (r *Renderer) ensureTexture(tex *scene.Texture) uint32 {
	if tex == nil {
		return 0
	}
	if tex.GLID == 0 && len(tex.Pixels) > 0 {
		if err := UploadTexture(tex); err != nil {
			r.log.Warnf("texture %s: %v", tex.Name, err)
			tex.Pixels = nil
		}
	}
	return tex.GLID
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func uniformLoc(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
