package omexml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// Metadata is an OME-XML document with typed accessors by series
// (image) index. Getters return zero values for series or channels that
// do not exist; setters grow the TiffData list as needed.
type Metadata struct {
	Root *OME
}

// New returns an empty document.
func New() *Metadata {
	return &Metadata{Root: &OME{Xmlns: Namespace}}
}

// Parse decodes an OME-XML document.
func Parse(r io.Reader) (*Metadata, error) {
	var root OME
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, &omefiles.FormatError{Op: "Parse", Msg: "invalid OME-XML", Err: err}
	}
	if root.XMLName.Local != "OME" {
		return nil, omefiles.Formatf("Parse", "root element %q is not OME", root.XMLName.Local)
	}
	return &Metadata{Root: &root}, nil
}

// ParseString decodes an OME-XML document held in a string.
func ParseString(s string) (*Metadata, error) {
	return Parse(strings.NewReader(s))
}

// AddImage appends a series described by c and returns its index. One
// Channel is created per channel plane, each holding the RGB sample
// count of c.
func (m *Metadata) AddImage(name string, c *meta.CoreMetadata) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if !c.PixelType.Valid() {
		return 0, omefiles.Logicf("AddImage", "invalid pixel type %v", c.PixelType)
	}
	n := len(m.Root.Images)
	interleaved := c.Interleaved
	bigEndian := !c.LittleEndian
	img := Image{
		ID:   fmt.Sprintf("Image:%d", n),
		Name: name,
		Pixels: Pixels{
			ID:              fmt.Sprintf("Pixels:%d", n),
			DimensionOrder:  string(c.DimensionOrder),
			Type:            c.PixelType.String(),
			SignificantBits: c.BitsPerPixel,
			Interleaved:     &interleaved,
			BigEndian:       &bigEndian,
			SizeX:           c.SizeX,
			SizeY:           c.SizeY,
			SizeZ:           c.SizeZ,
			SizeC:           c.SizeC,
			SizeT:           c.SizeT,
		},
	}
	spp := c.RGBChannelCount()
	for ch := range c.EffectiveSizeC() {
		img.Pixels.Channels = append(img.Pixels.Channels, Channel{
			ID:              fmt.Sprintf("Channel:%d:%d", n, ch),
			SamplesPerPixel: spp,
		})
	}
	m.Root.Images = append(m.Root.Images, img)
	return n, nil
}

func (m *Metadata) pixels(image int) *Pixels {
	if image < 0 || image >= len(m.Root.Images) {
		return nil
	}
	return &m.Root.Images[image].Pixels
}

// ImageCount returns the number of series.
func (m *Metadata) ImageCount() int { return len(m.Root.Images) }

func (m *Metadata) PixelsSizeX(image int) int {
	if p := m.pixels(image); p != nil {
		return p.SizeX
	}
	return 0
}

func (m *Metadata) PixelsSizeY(image int) int {
	if p := m.pixels(image); p != nil {
		return p.SizeY
	}
	return 0
}

func (m *Metadata) PixelsSizeZ(image int) int {
	if p := m.pixels(image); p != nil {
		return p.SizeZ
	}
	return 0
}

func (m *Metadata) PixelsSizeC(image int) int {
	if p := m.pixels(image); p != nil {
		return p.SizeC
	}
	return 0
}

func (m *Metadata) PixelsSizeT(image int) int {
	if p := m.pixels(image); p != nil {
		return p.SizeT
	}
	return 0
}

// PixelsType parses the pixel type of a series.
func (m *Metadata) PixelsType(image int) (pixel.Type, error) {
	p := m.pixels(image)
	if p == nil {
		return 0, omefiles.Logicf("PixelsType", "image %d out of range [0, %d)", image, m.ImageCount())
	}
	return pixel.ParseType(p.Type)
}

// PixelsDimensionOrder parses the dimension order of a series.
func (m *Metadata) PixelsDimensionOrder(image int) (dimension.Order, error) {
	p := m.pixels(image)
	if p == nil {
		return "", omefiles.Logicf("PixelsDimensionOrder", "image %d out of range [0, %d)", image, m.ImageCount())
	}
	return dimension.ParseOrder(p.DimensionOrder)
}

// PixelsInterleaved reports whether RGB samples are stored interleaved.
// Absent means false.
func (m *Metadata) PixelsInterleaved(image int) bool {
	if p := m.pixels(image); p != nil && p.Interleaved != nil {
		return *p.Interleaved
	}
	return false
}

// ChannelCount returns the number of Channel elements of a series.
func (m *Metadata) ChannelCount(image int) int {
	if p := m.pixels(image); p != nil {
		return len(p.Channels)
	}
	return 0
}

// ChannelSamplesPerPixel returns the sample count of a channel, or 0
// when it is not set.
func (m *Metadata) ChannelSamplesPerPixel(image, channel int) int {
	p := m.pixels(image)
	if p == nil || channel < 0 || channel >= len(p.Channels) {
		return 0
	}
	return p.Channels[channel].SamplesPerPixel
}

func (m *Metadata) tiffData(image, index int) *TiffData {
	p := m.pixels(image)
	if p == nil || index < 0 {
		return nil
	}
	if index >= len(p.TiffData) {
		p.TiffData = append(p.TiffData, make([]TiffData, index+1-len(p.TiffData))...)
	}
	p.MetadataOnly = nil
	return &p.TiffData[index]
}

func intPtr(v int) *int { return &v }

func (m *Metadata) SetTiffDataFirstZ(firstZ, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		td.FirstZ = intPtr(firstZ)
	}
}

func (m *Metadata) SetTiffDataFirstT(firstT, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		td.FirstT = intPtr(firstT)
	}
}

func (m *Metadata) SetTiffDataFirstC(firstC, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		td.FirstC = intPtr(firstC)
	}
}

func (m *Metadata) SetTiffDataIFD(ifd, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		td.IFD = intPtr(ifd)
	}
}

func (m *Metadata) SetTiffDataPlaneCount(count, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		td.PlaneCount = intPtr(count)
	}
}

func (m *Metadata) SetUUIDFileName(name string, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		if td.UUID == nil {
			td.UUID = &UUID{}
		}
		td.UUID.FileName = name
	}
}

func (m *Metadata) SetUUIDValue(value string, image, tiffData int) {
	if td := m.tiffData(image, tiffData); td != nil {
		if td.UUID == nil {
			td.UUID = &UUID{}
		}
		td.UUID.Value = value
	}
}

// SetUUID sets the UUID of the document itself.
func (m *Metadata) SetUUID(value string) { m.Root.UUID = value }

// RemoveBinData drops inline pixel data and MetadataOnly markers from
// every series.
func (m *Metadata) RemoveBinData() {
	for i := range m.Root.Images {
		p := &m.Root.Images[i].Pixels
		p.BinData = nil
		p.MetadataOnly = nil
	}
}

// ValidateModel checks that every series has channels and that their
// sample counts add up to SizeC. With correct set, missing channels are
// created, missing sample counts are filled in and SizeC is updated to
// the channel total. It reports whether the model was valid before any
// correction.
func (m *Metadata) ValidateModel(correct bool) bool {
	valid := true
	for i := range m.Root.Images {
		p := &m.Root.Images[i].Pixels
		if len(p.Channels) == 0 {
			valid = false
			if !correct {
				continue
			}
			for ch := range max(p.SizeC, 1) {
				p.Channels = append(p.Channels, Channel{
					ID:              fmt.Sprintf("Channel:%d:%d", i, ch),
					SamplesPerPixel: 1,
				})
			}
		}

		fill := 1
		if n := len(p.Channels); p.SizeC > 0 && p.SizeC%n == 0 {
			fill = p.SizeC / n
		}
		total := 0
		for ch := range p.Channels {
			c := &p.Channels[ch]
			if c.SamplesPerPixel <= 0 {
				valid = false
				if !correct {
					total++
					continue
				}
				c.SamplesPerPixel = fill
			}
			total += c.SamplesPerPixel
		}
		if total != p.SizeC {
			valid = false
			if correct {
				p.SizeC = total
			}
		}
	}
	return valid
}

// XML encodes the document with an XML declaration.
func (m *Metadata) XML() (string, error) {
	root := *m.Root
	root.XMLName = xml.Name{}
	root.Xmlns = Namespace

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(&root); err != nil {
		return "", fmt.Errorf("omexml: encoding: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}
