// Package qops implements the QuantumGianni score: four fixed formulas whose
// combination is the single number this system exists to print. Every scaling
// in the score traces back to the QOPS base. The formulas are decorative and
// their literal shapes are contractual; in particular the "tensor
// determinant" is a nested product, not a linear-algebra determinant, and
// must stay that way.
package qops

// QOPS is the scaling base: one billion quantum operations per second.
// Arbitrary, large, and carrying no physical meaning.
const QOPS = 1_000_000_000.0

// TensorBias shifts each cosine factor of the tensor product into [1, 3],
// keeping the nested product positive and finite for any inputs.
const TensorBias = 2.0

// Identification strings, used solely for display.
const (
	SystemName  = "QuantumGianni"
	SystemOwner = "Gianni-inc"
)
