package stereo

import "math"

// DisparityScale is the fixed factor applied when persisting disparities
// as unsigned 16-bit pixels. Scaling by 100 keeps two decimal places of
// the true disparity in an integer format.
const DisparityScale = 100

// DisparityFromBytes reinterprets a downloaded output buffer as signed
// 16-bit disparities (native little-endian order).
func DisparityFromBytes(raw []byte) []int16 {
	disp := make([]int16, len(raw)/2)
	for i := range disp {
		disp[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}
	return disp
}

// EncodeDisparity16U rescales raw disparities into the persisted unsigned
// 16-bit encoding: valid values are multiplied by DisparityScale and
// clamped to the uint16 range; the invalid sentinel (and any negative
// value) maps to exactly 0.
func EncodeDisparity16U(disp []int16, invalid int16) []uint16 {
	out := make([]uint16, len(disp))
	for i, d := range disp {
		if d == invalid || d < 0 {
			continue
		}
		v := int32(d) * DisparityScale
		if v > math.MaxUint16 {
			v = math.MaxUint16
		}
		out[i] = uint16(v)
	}
	return out
}
