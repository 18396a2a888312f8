package audio

import (
	"fmt"
	"sort"

	"github.com/gordonklaus/portaudio"
)

// Device describes one PortAudio device for the device listing.
type Device struct {
	Name           string
	HostAPI        string
	MaxInput       int
	MaxOutput      int
	SampleRate     float64
	IsDefaultInput bool
}

// String formats the device the way the -list-audio-devices flag prints it.
func (d Device) String() string {
	marker := "  "
	if d.IsDefaultInput {
		marker = "* "
	}
	return fmt.Sprintf("%s%-40s  %s  in:%d out:%d  %.0f Hz", marker, d.Name, d.HostAPI, d.MaxInput, d.MaxOutput, d.SampleRate)
}

// ListDevices returns every device across host APIs, sorted by host then
// name, with the default input marked.
func ListDevices() ([]Device, error) {
	hosts, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("host apis: %w", err)
	}

	defaultInputIndex := -1
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultInputIndex = def.Index
	}

	devices := make([]Device, 0, len(hosts)*4)
	for _, host := range hosts {
		for _, d := range host.Devices {
			devices = append(devices, Device{
				Name:           d.Name,
				HostAPI:        host.Name,
				MaxInput:       d.MaxInputChannels,
				MaxOutput:      d.MaxOutputChannels,
				SampleRate:     d.DefaultSampleRate,
				IsDefaultInput: d.Index == defaultInputIndex,
			})
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].HostAPI == devices[j].HostAPI {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].HostAPI < devices[j].HostAPI
	})
	return devices, nil
}
