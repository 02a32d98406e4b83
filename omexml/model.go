// Package omexml is a minimal OME-XML data model: the parts of the OME
// schema needed to describe image series stored in OME-TIFF files.
//
// Elements outside the model (annotations, instruments, ROIs, plates) are
// dropped when a document is parsed.
package omexml

import "encoding/xml"

// Namespace is the OME-XML schema namespace written by this package.
const Namespace = "http://www.openmicroscopy.org/Schemas/OME/2016-06"

// OME is the document root.
type OME struct {
	XMLName    xml.Name    `xml:"OME"`
	Xmlns      string      `xml:"xmlns,attr,omitempty"`
	UUID       string      `xml:"UUID,attr,omitempty"`
	Creator    string      `xml:"Creator,attr,omitempty"`
	BinaryOnly *BinaryOnly `xml:"BinaryOnly,omitempty"`
	Images     []Image     `xml:"Image"`
}

// BinaryOnly points a TIFF file at the companion file holding the full
// metadata.
type BinaryOnly struct {
	MetadataFile string `xml:"MetadataFile,attr"`
	UUID         string `xml:"UUID,attr"`
}

// Image is one series.
type Image struct {
	ID              string `xml:"ID,attr"`
	Name            string `xml:"Name,attr,omitempty"`
	AcquisitionDate string `xml:"AcquisitionDate,omitempty"`
	Description     string `xml:"Description,omitempty"`
	Pixels          Pixels `xml:"Pixels"`
}

// Pixels describes the dimensions and storage of a series.
type Pixels struct {
	ID              string   `xml:"ID,attr"`
	DimensionOrder  string   `xml:"DimensionOrder,attr"`
	Type            string   `xml:"Type,attr"`
	SignificantBits int      `xml:"SignificantBits,attr,omitempty"`
	Interleaved     *bool    `xml:"Interleaved,attr,omitempty"`
	BigEndian       *bool    `xml:"BigEndian,attr,omitempty"`
	SizeX           int      `xml:"SizeX,attr"`
	SizeY           int      `xml:"SizeY,attr"`
	SizeZ           int      `xml:"SizeZ,attr"`
	SizeC           int      `xml:"SizeC,attr"`
	SizeT           int      `xml:"SizeT,attr"`
	PhysicalSizeX   *float64 `xml:"PhysicalSizeX,attr,omitempty"`
	PhysicalSizeY   *float64 `xml:"PhysicalSizeY,attr,omitempty"`
	PhysicalSizeZ   *float64 `xml:"PhysicalSizeZ,attr,omitempty"`
	TimeIncrement   *float64 `xml:"TimeIncrement,attr,omitempty"`

	Channels     []Channel     `xml:"Channel"`
	BinData      []BinData     `xml:"BinData"`
	TiffData     []TiffData    `xml:"TiffData"`
	MetadataOnly *MetadataOnly `xml:"MetadataOnly,omitempty"`
	Planes       []Plane       `xml:"Plane"`
}

// Channel is one logical channel, which may hold several samples.
type Channel struct {
	ID              string `xml:"ID,attr"`
	Name            string `xml:"Name,attr,omitempty"`
	SamplesPerPixel int    `xml:"SamplesPerPixel,attr,omitempty"`
	Color           *int32 `xml:"Color,attr,omitempty"`
}

// BinData is pixel data inlined as base64 text.
type BinData struct {
	BigEndian   bool   `xml:"BigEndian,attr"`
	Length      int64  `xml:"Length,attr"`
	Compression string `xml:"Compression,attr,omitempty"`
	Data        string `xml:",chardata"`
}

// TiffData maps a run of planes onto IFDs of a TIFF file. Absent
// attributes are nil: IFD defaults to 0, the first coordinates default to
// 0, and PlaneCount defaults to 1 if IFD is set and to every plane
// otherwise.
type TiffData struct {
	IFD        *int  `xml:"IFD,attr,omitempty"`
	FirstZ     *int  `xml:"FirstZ,attr,omitempty"`
	FirstT     *int  `xml:"FirstT,attr,omitempty"`
	FirstC     *int  `xml:"FirstC,attr,omitempty"`
	PlaneCount *int  `xml:"PlaneCount,attr,omitempty"`
	UUID       *UUID `xml:"UUID,omitempty"`
}

// UUID names the file holding a TiffData run.
type UUID struct {
	FileName string `xml:"FileName,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// MetadataOnly marks a series with no pixel data.
type MetadataOnly struct{}

// Plane carries per-plane acquisition values.
type Plane struct {
	TheZ         int      `xml:"TheZ,attr"`
	TheT         int      `xml:"TheT,attr"`
	TheC         int      `xml:"TheC,attr"`
	DeltaT       *float64 `xml:"DeltaT,attr,omitempty"`
	ExposureTime *float64 `xml:"ExposureTime,attr,omitempty"`
	PositionX    *float64 `xml:"PositionX,attr,omitempty"`
	PositionY    *float64 `xml:"PositionY,attr,omitempty"`
	PositionZ    *float64 `xml:"PositionZ,attr,omitempty"`
}
