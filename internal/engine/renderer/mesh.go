package renderer

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
)

// vertex is the interleaved GPU vertex layout.
type vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [3]float32
	TexCoord [2]float32
}

// gpuMesh is an uploaded asset.
type gpuMesh struct {
	vao, vbo, ebo uint32
	texture       uint32
	mode          uint32
	count         int32
	indexed       bool
}

// interleave packs an asset's separate buffers into the GPU layout.
// Missing normals are zero, missing colors white, missing texcoords zero.
func interleave(a *model.Asset) []vertex {
	n := a.VertexCount()
	verts := make([]vertex, n)
	hasNormals := len(a.Normals) == len(a.Positions)
	hasColors := a.HasColors()
	hasUV := len(a.TexCoords) == n*2

	for i := 0; i < n; i++ {
		v := &verts[i]
		copy(v.Position[:], a.Positions[i*3:i*3+3])
		if hasNormals {
			copy(v.Normal[:], a.Normals[i*3:i*3+3])
		}
		if hasColors {
			copy(v.Color[:], a.Colors[i*3:i*3+3])
		} else {
			v.Color = [3]float32{1, 1, 1}
		}
		if hasUV {
			copy(v.TexCoord[:], a.TexCoords[i*2:i*2+2])
		}
	}
	return verts
}

func glMode(p model.Primitive) uint32 {
	switch p {
	case model.Lines:
		return gl.LINES
	case model.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func uploadMesh(a *model.Asset) *gpuMesh {
	verts := interleave(a)
	m := &gpuMesh{mode: glMode(a.Primitive)}
	if len(verts) == 0 {
		return m
	}
	stride := int32(unsafe.Sizeof(vertex{}))

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*int(stride), unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)

	if len(a.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(a.Indices)*4, unsafe.Pointer(&a.Indices[0]), gl.STATIC_DRAW)
		m.indexed = true
		m.count = int32(len(a.Indices))
	} else {
		m.count = int32(len(verts))
	}

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, stride, 36)
	gl.EnableVertexAttribArray(3)

	gl.BindVertexArray(0)

	if a.Textured() {
		m.texture = uploadTexture(a.Material.Texture)
	}
	return m
}

func uploadTexture(img *image.RGBA) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	return texID
}

func (m *gpuMesh) draw() {
	if m.vao == 0 || m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(m.mode, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
	gl.BindVertexArray(0)
}

func (m *gpuMesh) release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.texture != 0 {
		gl.DeleteTextures(1, &m.texture)
		m.texture = 0
	}
	m.count = 0
}
