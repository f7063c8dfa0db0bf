// Package pitch provides reusable non-I/O pitch-shifting processors.
//
// Included processors:
//   - PitchShifter: Time-domain WSOLA-style pitch shifter.
//   - SpectralPitchShifter: Frequency-domain phase-vocoder pitch shifter.
//   - PitchProcessor: Shared interface for interchangeable shifters.
package pitch
