package tiff

// Baseline and extension tags used by the engine.
var (
	TagNewSubfileType            = Uint32Tag(254, "NewSubfileType")
	TagSubfileType               = Uint16Tag(255, "SubfileType")
	TagImageWidth                = Uint32Tag(256, "ImageWidth")
	TagImageLength               = Uint32Tag(257, "ImageLength")
	TagBitsPerSample             = Uint16Tag(258, "BitsPerSample")
	TagCompression               = EnumTag[Compression](259, "Compression")
	TagPhotometricInterpretation = EnumTag[Photometric](262, "PhotometricInterpretation")
	TagThreshholding             = EnumTag[Threshholding](263, "Threshholding")
	TagCellWidth                 = Uint16Tag(264, "CellWidth")
	TagCellLength                = Uint16Tag(265, "CellLength")
	TagFillOrder                 = EnumTag[FillOrder](266, "FillOrder")
	TagDocumentName              = StringTag(269, "DocumentName")
	TagImageDescription          = StringTag(270, "ImageDescription")
	TagMake                      = StringTag(271, "Make")
	TagModel                     = StringTag(272, "Model")
	TagStripOffsets              = Uint64ArrayTag(273, "StripOffsets")
	TagOrientation               = EnumTag[Orientation](274, "Orientation")
	TagSamplesPerPixel           = Uint16Tag(277, "SamplesPerPixel")
	TagRowsPerStrip              = Uint32Tag(278, "RowsPerStrip")
	TagStripByteCounts           = Uint64ArrayTag(279, "StripByteCounts")
	TagMinSampleValue            = Uint16Tag(280, "MinSampleValue")
	TagMaxSampleValue            = Uint16Tag(281, "MaxSampleValue")
	TagXResolution               = FloatTag(282, "XResolution")
	TagYResolution               = FloatTag(283, "YResolution")
	TagPlanarConfiguration       = EnumTag[PlanarConfig](284, "PlanarConfiguration")
	TagPageName                  = StringTag(285, "PageName")
	TagXPosition                 = FloatTag(286, "XPosition")
	TagYPosition                 = FloatTag(287, "YPosition")
	TagResolutionUnit            = Uint16Tag(296, "ResolutionUnit")
	TagPageNumber                = Uint16PairTag(297, "PageNumber")
	TagTransferFunction          = Uint16TripleTag(301, "TransferFunction")
	TagSoftware                  = StringTag(305, "Software")
	TagDateTime                  = StringTag(306, "DateTime")
	TagArtist                    = StringTag(315, "Artist")
	TagHostComputer              = StringTag(316, "HostComputer")
	TagPredictor                 = EnumTag[Predictor](317, "Predictor")
	TagWhitePoint                = FloatPairTag(318, "WhitePoint")
	TagPrimaryChromaticities     = FloatSixTag(319, "PrimaryChromaticities")
	TagColorMap                  = Uint16TripleTag(320, "ColorMap")
	TagHalftoneHints             = Uint16PairTag(321, "HalftoneHints")
	TagTileWidth                 = Uint32Tag(322, "TileWidth")
	TagTileLength                = Uint32Tag(323, "TileLength")
	TagTileOffsets               = Uint64ArrayTag(324, "TileOffsets")
	TagTileByteCounts            = Uint64ArrayTag(325, "TileByteCounts")
	TagInkSet                    = Uint16Tag(332, "InkSet")
	TagInkNames                  = StringArrayTag(333, "InkNames")
	TagNumberOfInks              = Uint16Tag(334, "NumberOfInks")
	TagDotRange                  = Uint16ArrayTag(336, "DotRange")
	TagTargetPrinter             = StringTag(337, "TargetPrinter")
	TagExtraSamples              = EnumArrayTag[ExtraSample](338, "ExtraSamples")
	TagSampleFormat              = EnumTag[SampleFormat](339, "SampleFormat")
	TagIndexed                   = Uint16Tag(346, "Indexed")
	TagJPEGTables                = BytesTag(347, "JPEGTables")
	TagYCbCrCoefficients         = FloatTripleTag(529, "YCbCrCoefficients")
	TagYCbCrSubsampling          = Uint16PairTag(530, "YCbCrSubsampling")
	TagYCbCrPositioning          = EnumTag[YCbCrPosition](531, "YCbCrPositioning")
	TagReferenceBlackWhite       = FloatSixTag(532, "ReferenceBlackWhite")
	TagXMLPacket                 = BytesTag(700, "XMLPacket")
	TagCopyright                 = StringTag(33432, "Copyright")
)

// perSampleTags hold one value per sample. A single stored value is
// repeated for every sample when the directory is written.
var perSampleTags = map[TagID]bool{
	TagBitsPerSample.ID:  true,
	TagSampleFormat.ID:   true,
	TagMinSampleValue.ID: true,
	TagMaxSampleValue.ID: true,
}
