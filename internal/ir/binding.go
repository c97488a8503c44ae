package ir

// FixedBufferSize is the capacity of each text field in InputBindingInfo.
const FixedBufferSize = 128

// FixedBuffer is a NUL-terminated byte buffer as written by the runtime.
type FixedBuffer [FixedBufferSize]byte

// InputBindingInfo is the extended binding description the runtime reports
// for each origin bound to an action, in runtime-defined order.
type InputBindingInfo struct {
	DevicePathName  FixedBuffer
	InputPathName   FixedBuffer
	ModeName        FixedBuffer
	SlotName        FixedBuffer
	InputSourceType FixedBuffer
}

// BindingInfoText is the plain-text form of InputBindingInfo.
// Used by simulated runtimes and fixtures to build binding info values.
type BindingInfoText struct {
	DevicePathName  string `yaml:"device_path" json:"device_path_name"`
	InputPathName   string `yaml:"input_path" json:"input_path_name"`
	ModeName        string `yaml:"mode" json:"mode_name"`
	SlotName        string `yaml:"slot" json:"slot_name"`
	InputSourceType string `yaml:"source_type" json:"input_source_type"`
}

// Encode packs the text fields into fixed buffers.
// Text longer than FixedBufferSize-1 bytes is truncated so a terminating NUL
// always fits, matching what the runtime does.
func (t BindingInfoText) Encode() InputBindingInfo {
	var info InputBindingInfo
	fillFixed(&info.DevicePathName, t.DevicePathName)
	fillFixed(&info.InputPathName, t.InputPathName)
	fillFixed(&info.ModeName, t.ModeName)
	fillFixed(&info.SlotName, t.SlotName)
	fillFixed(&info.InputSourceType, t.InputSourceType)
	return info
}

func fillFixed(buf *FixedBuffer, s string) {
	n := copy(buf[:FixedBufferSize-1], s)
	buf[n] = 0
}

// BindingOriginData is one resolved binding for an action: the localized
// names for the origin plus the decoded binding info fields.
type BindingOriginData struct {
	LocalizedControllerType string `json:"localized_controller_type"`
	LocalizedHand           string `json:"localized_hand"`
	LocalizedInputSource    string `json:"localized_input_source"`
	DevicePathName          string `json:"device_path_name"`
	InputPathName           string `json:"input_path_name"`
	ModeName                string `json:"mode_name"`
	SlotName                string `json:"slot_name"`
	InputSourceType         string `json:"input_source_type"`
}

// LocalizedNames holds the three name projections for one origin.
type LocalizedNames struct {
	ControllerType string
	Hand           string
	InputSource    string
}

// NewBindingOriginData combines localized names with a decoded binding info.
// Returns a *DecodeError if any fixed buffer is not valid text.
func NewBindingOriginData(names LocalizedNames, info *InputBindingInfo) (BindingOriginData, error) {
	fields := []struct {
		name string
		buf  *FixedBuffer
	}{
		{"device_path_name", &info.DevicePathName},
		{"input_path_name", &info.InputPathName},
		{"mode_name", &info.ModeName},
		{"slot_name", &info.SlotName},
		{"input_source_type", &info.InputSourceType},
	}

	decoded := make([]string, len(fields))
	for i, f := range fields {
		s, err := DecodeFixed(f.buf[:])
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Field = f.name
			}
			return BindingOriginData{}, err
		}
		decoded[i] = s
	}

	return BindingOriginData{
		LocalizedControllerType: names.ControllerType,
		LocalizedHand:           names.Hand,
		LocalizedInputSource:    names.InputSource,
		DevicePathName:          decoded[0],
		InputPathName:           decoded[1],
		ModeName:                decoded[2],
		SlotName:                decoded[3],
		InputSourceType:         decoded[4],
	}, nil
}

// ToCanonical converts the record to a map for MarshalCanonical.
func (d BindingOriginData) ToCanonical() map[string]any {
	return map[string]any{
		"localized_controller_type": d.LocalizedControllerType,
		"localized_hand":            d.LocalizedHand,
		"localized_input_source":    d.LocalizedInputSource,
		"device_path_name":          d.DevicePathName,
		"input_path_name":           d.InputPathName,
		"mode_name":                 d.ModeName,
		"slot_name":                 d.SlotName,
		"input_source_type":         d.InputSourceType,
	}
}
