// Package formats provides parsers for the model files produced by the
// capture and reconstruction pipelines: Wavefront OBJ meshes with their
// MTL material libraries, and PLY meshes or point clouds.
package formats
