package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestRegistryCategoriesAreRegistered(t *testing.T) {
	for category, names := range GetAlgorithmsByCategory() {
		for _, name := range names {
			assert.True(t, IsValidAlgorithm(name), "%s/%s", category, name)
		}
	}
	assert.Len(t, GetAllAlgorithms(), 5)
}

func TestRegistryApply(t *testing.T) {
	img := checker(t, 16, 16, 4)
	defer img.Close()

	for name, alg := range GetAllAlgorithms() {
		t.Run(name, func(t *testing.T) {
			params := alg.GetDefaultParams()
			require.NoError(t, alg.Validate(params))
			out, err := Apply(name, img, params)
			require.NoError(t, err)
			defer out.Close()
			assert.False(t, out.Empty())
			assert.NotEmpty(t, alg.GetName())
			assert.NotEmpty(t, alg.GetDescription())
		})
	}
}

func TestRegistryApplyCannyParams(t *testing.T) {
	img := checker(t, 16, 16, 4)
	defer img.Close()

	out, err := Apply("canny", img, map[string]interface{}{"low_threshold": 80.0, "high_threshold": 160.0})
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, gocv.MatTypeCV8U, out.Type())
}

func TestRegistryRejectsInvalid(t *testing.T) {
	img := checker(t, 8, 8, 2)
	defer img.Close()

	_, err := Apply("nope", img, nil)
	assert.Error(t, err)

	_, err = Apply("canny", img, map[string]interface{}{"low_threshold": 2000.0, "high_threshold": 100.0})
	assert.Error(t, err)
	_, err = Apply("canny", img, map[string]interface{}{"low_threshold": -5.0})
	assert.Error(t, err)

	assert.Error(t, ValidateParameters("convolve_box", map[string]interface{}{"kernel_size": 4.0}))
	assert.Error(t, ValidateParameters("convolve_box", map[string]interface{}{"padding": "wrap"}))
	assert.Error(t, ValidateParameters("laplacian", map[string]interface{}{"ksize": 2.0}))
	assert.NoError(t, ValidateParameters("convolve_box", map[string]interface{}{"kernel_size": 5.0, "padding": "valid"}))
}

func TestValidateFollowsParameterInfo(t *testing.T) {
	for name, alg := range GetAllAlgorithms() {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, alg.Validate(nil))
			for _, info := range alg.GetParameterInfo() {
				if info.Type == "enum" {
					assert.Error(t, alg.Validate(map[string]interface{}{info.Name: "bogus"}), info.Name)
					continue
				}
				lo := info.Min.(float64)
				hi := info.Max.(float64)
				assert.Error(t, alg.Validate(map[string]interface{}{info.Name: lo - 1}), info.Name)
				assert.Error(t, alg.Validate(map[string]interface{}{info.Name: hi + 2}), info.Name)
			}
		})
	}
}
