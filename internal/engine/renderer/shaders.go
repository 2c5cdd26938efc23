package renderer

// Shading modes understood by the fragment shader.
const (
	shadeTint int32 = iota
	shadeVertexColor
	shadeTexture
)

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec3 aColor;
layout (location = 3) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform float uPointSize;

out vec3 vNormal;
out vec3 vColor;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vColor = aColor;
    vTexCoord = aTexCoord;
    gl_PointSize = uPointSize;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;
in vec3 vColor;
in vec2 vTexCoord;

uniform int uShading;
uniform int uLit;
uniform vec3 uTint;
uniform float uOpacity;
uniform sampler2D uTexture;

uniform vec3 uAmbient;
uniform vec3 uLightDir[2];
uniform vec3 uLightColor[2];

out vec4 FragColor;

void main() {
    vec3 base = uTint;
    if (uShading == 1) {
        base = vColor;
    } else if (uShading == 2) {
        base = texture(uTexture, vTexCoord).rgb * uTint;
    }

    vec3 color = base;
    if (uLit == 1) {
        vec3 n = normalize(vNormal);
        if (!gl_FrontFacing) {
            n = -n;
        }
        vec3 light = uAmbient;
        for (int i = 0; i < 2; i++) {
            light += uLightColor[i] * max(dot(n, normalize(uLightDir[i])), 0.0);
        }
        color = base * light;
    }
    FragColor = vec4(color, uOpacity);
}
`
