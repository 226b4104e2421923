package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gianni-inc/QuantumGianni/internal/qops"
)

func TestPrintReport(t *testing.T) {
	b := qops.Orchestrate(qops.DefaultParams())

	var buf bytes.Buffer
	printReport(&buf, b)

	want := fmt.Sprintf(
		"System Name: QuantumGianni\nSystem Owner: Gianni-inc\nQuantum-Inspired System Output: %.10f\n",
		b.Total,
	)
	assert.Equal(t, want, buf.String())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Regexp(t, `^Quantum-Inspired System Output: -?\d+\.\d{10}$`, lines[2])
}
