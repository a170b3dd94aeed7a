package logic

import (
	"testing"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFeeDefaultPercentage(t *testing.T) {
	// 比例未设置时按 3% 计算
	program := &model.Program{}

	fee, err := ComputeFee(program, []string{"1000", "500"})
	require.NoError(t, err)
	assert.Equal(t, "45", fee.String())
}

func TestComputeFeeCustomPercentage(t *testing.T) {
	p := "2.5"
	program := &model.Program{FeePercentage: &p}

	fee, err := ComputeFee(program, []string{"1000", "1000"})
	require.NoError(t, err)
	assert.Equal(t, "50", fee.String())
}

func TestComputeFeeEmpty(t *testing.T) {
	fee, err := ComputeFee(&model.Program{}, nil)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())
}

func TestComputeFeeDecimalPrecision(t *testing.T) {
	// 0.1 + 0.2 类的金额在浮点下会漂移，这里必须精确
	program := &model.Program{}

	fee, err := ComputeFee(program, []string{"0.1", "0.2"})
	require.NoError(t, err)
	assert.Equal(t, "0.009", fee.String())
}

func TestComputeFeeInvalidInputs(t *testing.T) {
	bad := "abc"
	_, err := ComputeFee(&model.Program{FeePercentage: &bad}, []string{"100"})
	assert.Error(t, err)

	_, err = ComputeFee(&model.Program{}, []string{"xyz"})
	assert.Error(t, err)
}
