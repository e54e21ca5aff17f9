package mkvio

var (
	ElementUnknown                     = ElementRegister{0x0, ElementTypeUnknown, "unknown", -1}
	ElementEBML                        = ElementRegister{0x1a45dfa3, ElementTypeMaster, "EBML", 0}
	ElementEBMLVersion                 = ElementRegister{0x4286, ElementTypeUint, "EBMLVersion", 1}
	ElementEBMLReadVersion             = ElementRegister{0x42f7, ElementTypeUint, "EBMLReadVersion", 1}
	ElementEBMLMaxIDLength             = ElementRegister{0x42f2, ElementTypeUint, "EBMLMaxIDLength", 1}
	ElementEBMLMaxSizeLength           = ElementRegister{0x42f3, ElementTypeUint, "EBMLMaxSizeLength", 1}
	ElementDocType                     = ElementRegister{0x4282, ElementTypeString, "DocType", 1}
	ElementDocTypeVersion              = ElementRegister{0x4287, ElementTypeUint, "DocTypeVersion", 1}
	ElementDocTypeReadVersion          = ElementRegister{0x4285, ElementTypeUint, "DocTypeReadVersion", 1}
	ElementVoid                        = ElementRegister{0xec, ElementTypeBinary, "Void", -1}
	ElementCRC32                       = ElementRegister{0xbf, ElementTypeBinary, "CRC-32", -1}
	ElementSegment                     = ElementRegister{0x18538067, ElementTypeMaster, "Segment", 0}
	ElementSeekHead                    = ElementRegister{0x114d9b74, ElementTypeMaster, "SeekHead", 1}
	ElementSeek                        = ElementRegister{0x4dbb, ElementTypeMaster, "Seek", 2}
	ElementSeekID                      = ElementRegister{0x53ab, ElementTypeBinary, "SeekID", 3}
	ElementSeekPosition                = ElementRegister{0x53ac, ElementTypeUint, "SeekPosition", 3}
	ElementInfo                        = ElementRegister{0x1549a966, ElementTypeMaster, "Info", 1}
	ElementSegmentUID                  = ElementRegister{0x73a4, ElementTypeBinary, "SegmentUID", 2}
	ElementSegmentFilename             = ElementRegister{0x7384, ElementTypeUnicode, "SegmentFilename", 2}
	ElementPrevUID                     = ElementRegister{0x3cb923, ElementTypeBinary, "PrevUID", 2}
	ElementPrevFilename                = ElementRegister{0x3c83ab, ElementTypeUnicode, "PrevFilename", 2}
	ElementNextUID                     = ElementRegister{0x3eb923, ElementTypeBinary, "NextUID", 2}
	ElementNextFilename                = ElementRegister{0x3e83bb, ElementTypeUnicode, "NextFilename", 2}
	ElementSegmentFamily               = ElementRegister{0x4444, ElementTypeBinary, "SegmentFamily", 2}
	ElementChapterTranslate            = ElementRegister{0x6924, ElementTypeMaster, "ChapterTranslate", 2}
	ElementChapterTranslateEditionUID  = ElementRegister{0x69fc, ElementTypeUint, "ChapterTranslateEditionUID", 3}
	ElementChapterTranslateCodec       = ElementRegister{0x69bf, ElementTypeUint, "ChapterTranslateCodec", 3}
	ElementChapterTranslateID          = ElementRegister{0x69a5, ElementTypeBinary, "ChapterTranslateID", 3}
	ElementTimecodeScale               = ElementRegister{0x2ad7b1, ElementTypeUint, "TimecodeScale", 2}
	ElementDuration                    = ElementRegister{0x4489, ElementTypeFloat, "Duration", 2}
	ElementDateUTC                     = ElementRegister{0x4461, ElementTypeDate, "DateUTC", 2}
	ElementTitle                       = ElementRegister{0x7ba9, ElementTypeUnicode, "Title", 2}
	ElementMuxingApp                   = ElementRegister{0x4d80, ElementTypeUnicode, "MuxingApp", 2}
	ElementWritingApp                  = ElementRegister{0x5741, ElementTypeUnicode, "WritingApp", 2}
	ElementCluster                     = ElementRegister{0x1f43b675, ElementTypeMaster, "Cluster", 1}
	ElementTimecode                    = ElementRegister{0xe7, ElementTypeUint, "Timecode", 2}
	ElementSilentTracks                = ElementRegister{0x5854, ElementTypeMaster, "SilentTracks", 2}
	ElementSilentTrackNumber           = ElementRegister{0x58d7, ElementTypeUint, "SilentTrackNumber", 3}
	ElementPosition                    = ElementRegister{0xa7, ElementTypeUint, "Position", 2}
	ElementPrevSize                    = ElementRegister{0xab, ElementTypeUint, "PrevSize", 2}
	ElementSimpleBlock                 = ElementRegister{0xa3, ElementTypeBinary, "SimpleBlock", 2}
	ElementBlockGroup                  = ElementRegister{0xa0, ElementTypeMaster, "BlockGroup", 2}
	ElementBlock                       = ElementRegister{0xa1, ElementTypeBinary, "Block", 3}
	ElementBlockAdditions              = ElementRegister{0x75a1, ElementTypeMaster, "BlockAdditions", 3}
	ElementBlockMore                   = ElementRegister{0xa6, ElementTypeMaster, "BlockMore", 4}
	ElementBlockAddID                  = ElementRegister{0xee, ElementTypeUint, "BlockAddID", 5}
	ElementBlockAdditional             = ElementRegister{0xa5, ElementTypeBinary, "BlockAdditional", 5}
	ElementBlockDuration               = ElementRegister{0x9b, ElementTypeUint, "BlockDuration", 3}
	ElementReferencePriority           = ElementRegister{0xfa, ElementTypeUint, "ReferencePriority", 3}
	ElementReferenceBlock              = ElementRegister{0xfb, ElementTypeInt, "ReferenceBlock", 3}
	ElementCodecState                  = ElementRegister{0xa4, ElementTypeBinary, "CodecState", 3}
	ElementDiscardPadding              = ElementRegister{0x75a2, ElementTypeInt, "DiscardPadding", 3}
	ElementSlices                      = ElementRegister{0x8e, ElementTypeMaster, "Slices", 3}
	ElementTimeSlice                   = ElementRegister{0xe8, ElementTypeMaster, "TimeSlice", 4}
	ElementLaceNumber                  = ElementRegister{0xcc, ElementTypeUint, "LaceNumber", 5}
	ElementTracks                      = ElementRegister{0x1654ae6b, ElementTypeMaster, "Tracks", 1}
	ElementTrackEntry                  = ElementRegister{0xae, ElementTypeMaster, "TrackEntry", 2}
	ElementTrackNumber                 = ElementRegister{0xd7, ElementTypeUint, "TrackNumber", 3}
	ElementTrackUID                    = ElementRegister{0x73c5, ElementTypeUint, "TrackUID", 3}
	ElementTrackType                   = ElementRegister{0x83, ElementTypeUint, "TrackType", 3}
	ElementFlagEnabled                 = ElementRegister{0xb9, ElementTypeUint, "FlagEnabled", 3}
	ElementFlagDefault                 = ElementRegister{0x88, ElementTypeUint, "FlagDefault", 3}
	ElementFlagForced                  = ElementRegister{0x55aa, ElementTypeUint, "FlagForced", 3}
	ElementFlagLacing                  = ElementRegister{0x9c, ElementTypeUint, "FlagLacing", 3}
	ElementMinCache                    = ElementRegister{0x6de7, ElementTypeUint, "MinCache", 3}
	ElementMaxCache                    = ElementRegister{0x6df8, ElementTypeUint, "MaxCache", 3}
	ElementDefaultDuration             = ElementRegister{0x23e383, ElementTypeUint, "DefaultDuration", 3}
	ElementDefaultDecodedFieldDuration = ElementRegister{0x234e7a, ElementTypeUint, "DefaultDecodedFieldDuration", 3}
	ElementMaxBlockAdditionID          = ElementRegister{0x55ee, ElementTypeUint, "MaxBlockAdditionID", 3}
	ElementName                        = ElementRegister{0x536e, ElementTypeUnicode, "Name", 3}
	ElementLanguage                    = ElementRegister{0x22b59c, ElementTypeString, "Language", 3}
	ElementCodecID                     = ElementRegister{0x86, ElementTypeString, "CodecID", 3}
	ElementCodecPrivate                = ElementRegister{0x63a2, ElementTypeBinary, "CodecPrivate", 3}
	ElementCodecName                   = ElementRegister{0x258688, ElementTypeUnicode, "CodecName", 3}
	ElementAttachmentLink              = ElementRegister{0x7446, ElementTypeUint, "AttachmentLink", 3}
	ElementCodecDecodeAll              = ElementRegister{0xaa, ElementTypeUint, "CodecDecodeAll", 3}
	ElementTrackOverlay                = ElementRegister{0x6fab, ElementTypeUint, "TrackOverlay", 3}
	ElementCodecDelay                  = ElementRegister{0x56aa, ElementTypeUint, "CodecDelay", 3}
	ElementSeekPreRoll                 = ElementRegister{0x56bb, ElementTypeUint, "SeekPreRoll", 3}
	ElementTrackTranslate              = ElementRegister{0x6624, ElementTypeMaster, "TrackTranslate", 3}
	ElementTrackTranslateEditionUID    = ElementRegister{0x66fc, ElementTypeUint, "TrackTranslateEditionUID", 4}
	ElementTrackTranslateCodec         = ElementRegister{0x66bf, ElementTypeUint, "TrackTranslateCodec", 4}
	ElementTrackTranslateTrackID       = ElementRegister{0x66a5, ElementTypeBinary, "TrackTranslateTrackID", 4}
	ElementVideo                       = ElementRegister{0xe0, ElementTypeMaster, "Video", 3}
	ElementFlagInterlaced              = ElementRegister{0x9a, ElementTypeUint, "FlagInterlaced", 4}
	ElementStereoMode                  = ElementRegister{0x53b8, ElementTypeUint, "StereoMode", 4}
	ElementAlphaMode                   = ElementRegister{0x53c0, ElementTypeUint, "AlphaMode", 4}
	ElementPixelWidth                  = ElementRegister{0xb0, ElementTypeUint, "PixelWidth", 4}
	ElementPixelHeight                 = ElementRegister{0xba, ElementTypeUint, "PixelHeight", 4}
	ElementPixelCropBottom             = ElementRegister{0x54aa, ElementTypeUint, "PixelCropBottom", 4}
	ElementPixelCropTop                = ElementRegister{0x54bb, ElementTypeUint, "PixelCropTop", 4}
	ElementPixelCropLeft               = ElementRegister{0x54cc, ElementTypeUint, "PixelCropLeft", 4}
	ElementPixelCropRight              = ElementRegister{0x54dd, ElementTypeUint, "PixelCropRight", 4}
	ElementDisplayWidth                = ElementRegister{0x54b0, ElementTypeUint, "DisplayWidth", 4}
	ElementDisplayHeight               = ElementRegister{0x54ba, ElementTypeUint, "DisplayHeight", 4}
	ElementDisplayUint                 = ElementRegister{0x54b2, ElementTypeUint, "DisplayUint", 4}
	ElementAspectRatioType             = ElementRegister{0x54b3, ElementTypeUint, "AspectRatioType", 4}
	ElementColourSpace                 = ElementRegister{0x2eb524, ElementTypeBinary, "ColourSpace", 4}
	ElementAudio                       = ElementRegister{0xe1, ElementTypeMaster, "Audio", 3}
	ElementSamplingFrequency           = ElementRegister{0xb5, ElementTypeFloat, "SamplingFrequency", 4}
	ElementOutputSamplingFrequency     = ElementRegister{0x78b5, ElementTypeFloat, "OutputSamplingFrequency", 4}
	ElementChannels                    = ElementRegister{0x9f, ElementTypeUint, "Channels", 4}
	ElementBitDepth                    = ElementRegister{0x6264, ElementTypeUint, "BitDepth", 4}
	ElementTrackOperation              = ElementRegister{0xe2, ElementTypeMaster, "TrackOperation", 3}
	ElementTrackCombinePlanes          = ElementRegister{0xe3, ElementTypeMaster, "TrackCombinePlanes", 4}
	ElementTrackPlane                  = ElementRegister{0xe4, ElementTypeMaster, "TrackPlane", 5}
	ElementTrackPlaneUID               = ElementRegister{0xe5, ElementTypeUint, "TrackPlaneUID", 6}
	ElementTrackPlaneType              = ElementRegister{0xe6, ElementTypeUint, "TrackPlaneType", 6}
	ElementTrackJoinBlocks             = ElementRegister{0xe9, ElementTypeMaster, "TrackJoinBlocks", 4}
	ElementTrackJoinUID                = ElementRegister{0xed, ElementTypeUint, "TrackJoinUID", 5}
	ElementContentEncodings            = ElementRegister{0x6d80, ElementTypeMaster, "ContentEncodings", 3}
	ElementContentEncoding             = ElementRegister{0x6240, ElementTypeMaster, "ContentEncoding", 4}
	ElementContentEncodingOrder        = ElementRegister{0x5031, ElementTypeUint, "ContentEncodingOrder", 5}
	ElementContentEncodingScope        = ElementRegister{0x5032, ElementTypeUint, "ContentEncodingScope", 5}
	ElementContentEncodingType         = ElementRegister{0x5033, ElementTypeUint, "ContentEncodingType", 5}
	ElementContentCompression          = ElementRegister{0x5034, ElementTypeMaster, "ContentCompression", 5}
	ElementContentCompAlgo             = ElementRegister{0x4254, ElementTypeUint, "ContentCompAlgo", 6}
	ElementContentCompSettings         = ElementRegister{0x4255, ElementTypeBinary, "ContentCompSettings", 6}
	ElementContentEncryption           = ElementRegister{0x5035, ElementTypeMaster, "ContentEncryption", 5}
	ElementContentEncAlgo              = ElementRegister{0x47e1, ElementTypeUint, "ContentEncAlgo", 6}
	ElementContentEncKeyID             = ElementRegister{0x47e2, ElementTypeUint, "ContentEncKeyID", 6}
	ElementContentSignature            = ElementRegister{0x47e3, ElementTypeBinary, "ContentSignature", 6}
	ElementContentSigKeyID             = ElementRegister{0x47e4, ElementTypeBinary, "ContentSigKeyID", 6}
	ElementContentSigAlgo              = ElementRegister{0x47e5, ElementTypeUint, "ContentSigAlgo", 6}
	ElementContentSigHashAlgo          = ElementRegister{0x47e6, ElementTypeUint, "ContentSigHashAlgo", 6}
	ElementCues                        = ElementRegister{0x1c53bb6b, ElementTypeMaster, "Cues", 1}
	ElementCuePoint                    = ElementRegister{0xbb, ElementTypeMaster, "CuePoint", 2}
	ElementCueTime                     = ElementRegister{0xb3, ElementTypeUint, "CueTime", 3}
	ElementCueTrackPositions           = ElementRegister{0xb7, ElementTypeMaster, "CueTrackPositions", 3}
	ElementCueTrack                    = ElementRegister{0xf7, ElementTypeUint, "CueTrack", 4}
	ElementCueClusterPosition          = ElementRegister{0xf1, ElementTypeUint, "CueClusterPosition", 4}
	ElementCueRelativePosition         = ElementRegister{0xf0, ElementTypeUint, "CueRelativePosition", 4}
	ElementCueDuration                 = ElementRegister{0xb2, ElementTypeUint, "CueDuration", 4}
	ElementCueBlockNumber              = ElementRegister{0x5378, ElementTypeUint, "CueBlockNumber", 4}
	ElementCueCodecState               = ElementRegister{0xea, ElementTypeUint, "CueCodecState", 4}
	ElementCueReference                = ElementRegister{0xdb, ElementTypeMaster, "CueReference", 4}
	ElementCueRefTime                  = ElementRegister{0x96, ElementTypeUint, "CueRefTime", 5}
	ElementAttachments                 = ElementRegister{0x1941a469, ElementTypeMaster, "Attachments", 1}
	ElementAttachedFile                = ElementRegister{0x61a7, ElementTypeMaster, "AttachedFile", 2}
	ElementFileDescription             = ElementRegister{0x467e, ElementTypeUnicode, "FileDescription", 3}
	ElementFileName                    = ElementRegister{0x466e, ElementTypeUnicode, "FileName", 3}
	ElementFileMimeType                = ElementRegister{0x6460, ElementTypeString, "FileMimeType", 3}
	ElementFileData                    = ElementRegister{0x465c, ElementTypeBinary, "FileData", 3}
	ElementFileUID                     = ElementRegister{0x46ae, ElementTypeUint, "FileUID", 3}
	ElementChapters                    = ElementRegister{0x1043a770, ElementTypeMaster, "Chapters", 1}
	ElementEditionEntry                = ElementRegister{0x45b9, ElementTypeMaster, "EditionEntry", 2}
	ElementEditionUID                  = ElementRegister{0x45bc, ElementTypeUint, "EditionUID", 3}
	ElementEditionFlagHidden           = ElementRegister{0x45bd, ElementTypeUint, "EditionFlagHidden", 3}
	ElementEditionFlagDefault          = ElementRegister{0x45db, ElementTypeUint, "EditionFlagDefault", 3}
	ElementEditionFlagOrdered          = ElementRegister{0x45dd, ElementTypeUint, "EditionFlagOrdered", 3}
	ElementChapterAtom                 = ElementRegister{0xb6, ElementTypeMaster, "ChapterAtom", 3}
	ElementChapterUID                  = ElementRegister{0x73c4, ElementTypeUint, "ChapterUID", 4}
	ElementChapterStringUID            = ElementRegister{0x5654, ElementTypeUnicode, "ChapterStringUID", 4}
	ElementChapterTimeStart            = ElementRegister{0x91, ElementTypeUint, "ChapterTimeStart", 4}
	ElementChapterTimeEnd              = ElementRegister{0x92, ElementTypeUint, "ChapterTimeEnd", 4}
	ElementChapterFlagHidden           = ElementRegister{0x98, ElementTypeUint, "ChapterFlagHidden", 4}
	ElementChapterFlagEnabled          = ElementRegister{0x4598, ElementTypeUint, "ChapterFlagEnabled", 4}
	ElementChapterSegmentUID           = ElementRegister{0x6e67, ElementTypeBinary, "ChapterSegmentUID", 4}
	ElementChapterSegmentEditionUID    = ElementRegister{0x6ebc, ElementTypeUint, "ChapterSegmentEditionUID", 4}
	ElementChapterPhysicalEquiv        = ElementRegister{0x63c3, ElementTypeUint, "ChapterPhysicalEquiv", 4}
	ElementChapterTrack                = ElementRegister{0x8f, ElementTypeMaster, "ChapterTrack", 4}
	ElementChapterTrackNumber          = ElementRegister{0x89, ElementTypeUint, "ChapterTrackNumber", 5}
	ElementChapterDisplay              = ElementRegister{0x80, ElementTypeMaster, "ChapterDisplay", 4}
	ElementChapString                  = ElementRegister{0x85, ElementTypeUnicode, "ChapString", 5}
	ElementChapLanguage                = ElementRegister{0x437c, ElementTypeString, "ChapLanguage", 5}
	ElementChapCountry                 = ElementRegister{0x437e, ElementTypeString, "ChapCountry", 5}
	ElementChapProcess                 = ElementRegister{0x6944, ElementTypeMaster, "ChapProcess", 4}
	ElementChapProcessCodecID          = ElementRegister{0x6955, ElementTypeUint, "ChapProcessCodecID", 5}
	ElementChapProcessPrivate          = ElementRegister{0x450d, ElementTypeBinary, "ChapProcessPrivate", 5}
	ElementChapProcessCommand          = ElementRegister{0x6911, ElementTypeMaster, "ChapProcessCommand", 5}
	ElementChapProcessTime             = ElementRegister{0x6922, ElementTypeUint, "ChapProcessTime", 6}
	ElementChapProcessData             = ElementRegister{0x6933, ElementTypeBinary, "ChapProcessData", 6}
	ElementTags                        = ElementRegister{0x1254c367, ElementTypeMaster, "Tags", 1}
	ElementTag                         = ElementRegister{0x7373, ElementTypeMaster, "Tag", 2}
	ElementTargets                     = ElementRegister{0x63c0, ElementTypeMaster, "Targets", 3}
	ElementTargetTypeValue             = ElementRegister{0x68ca, ElementTypeUint, "TargetTypeValue", 4}
	ElementTargetType                  = ElementRegister{0x63ca, ElementTypeString, "TargetType", 4}
	ElementTagTrackUID                 = ElementRegister{0x63c5, ElementTypeUint, "TagTrackUID", 4}
	ElementTagEditionUID               = ElementRegister{0x63c9, ElementTypeUint, "TagEditionUID", 4}
	ElementTagChapterUID               = ElementRegister{0x63c4, ElementTypeUint, "TagChapterUID", 4}
	ElementTagAttachmentUID            = ElementRegister{0x63c6, ElementTypeUint, "TagAttachmentUID", 4}
	ElementSimpleTag                   = ElementRegister{0x67c8, ElementTypeMaster, "SimpleTag", 3}
	ElementTagName                     = ElementRegister{0x45a3, ElementTypeUnicode, "TagName", 4}
	ElementTagLanguage                 = ElementRegister{0x447a, ElementTypeString, "TagLanguage", 4}
	ElementTagDefault                  = ElementRegister{0x4484, ElementTypeUint, "TagDefault", 4}
	ElementTagString                   = ElementRegister{0x4487, ElementTypeUnicode, "TagString", 4}
	ElementTagBinary                   = ElementRegister{0x4485, ElementTypeBinary, "TagBinary", 4}
)

// DefaultSchema resolves the standard WebM/Matroska elements
var DefaultSchema = NewSchema(
		ElementEBML,
		ElementEBMLVersion,
		ElementEBMLReadVersion,
		ElementEBMLMaxIDLength,
		ElementEBMLMaxSizeLength,
		ElementDocType,
		ElementDocTypeVersion,
		ElementDocTypeReadVersion,
		ElementVoid,
		ElementCRC32,
		ElementSegment,
		ElementSeekHead,
		ElementSeek,
		ElementSeekID,
		ElementSeekPosition,
		ElementInfo,
		ElementSegmentUID,
		ElementSegmentFilename,
		ElementPrevUID,
		ElementPrevFilename,
		ElementNextUID,
		ElementNextFilename,
		ElementSegmentFamily,
		ElementChapterTranslate,
		ElementChapterTranslateEditionUID,
		ElementChapterTranslateCodec,
		ElementChapterTranslateID,
		ElementTimecodeScale,
		ElementDuration,
		ElementDateUTC,
		ElementTitle,
		ElementMuxingApp,
		ElementWritingApp,
		ElementCluster,
		ElementTimecode,
		ElementSilentTracks,
		ElementSilentTrackNumber,
		ElementPosition,
		ElementPrevSize,
		ElementSimpleBlock,
		ElementBlockGroup,
		ElementBlock,
		ElementBlockAdditions,
		ElementBlockMore,
		ElementBlockAddID,
		ElementBlockAdditional,
		ElementBlockDuration,
		ElementReferencePriority,
		ElementReferenceBlock,
		ElementCodecState,
		ElementDiscardPadding,
		ElementSlices,
		ElementTimeSlice,
		ElementLaceNumber,
		ElementTracks,
		ElementTrackEntry,
		ElementTrackNumber,
		ElementTrackUID,
		ElementTrackType,
		ElementFlagEnabled,
		ElementFlagDefault,
		ElementFlagForced,
		ElementFlagLacing,
		ElementMinCache,
		ElementMaxCache,
		ElementDefaultDuration,
		ElementDefaultDecodedFieldDuration,
		ElementMaxBlockAdditionID,
		ElementName,
		ElementLanguage,
		ElementCodecID,
		ElementCodecPrivate,
		ElementCodecName,
		ElementAttachmentLink,
		ElementCodecDecodeAll,
		ElementTrackOverlay,
		ElementCodecDelay,
		ElementSeekPreRoll,
		ElementTrackTranslate,
		ElementTrackTranslateEditionUID,
		ElementTrackTranslateCodec,
		ElementTrackTranslateTrackID,
		ElementVideo,
		ElementFlagInterlaced,
		ElementStereoMode,
		ElementAlphaMode,
		ElementPixelWidth,
		ElementPixelHeight,
		ElementPixelCropBottom,
		ElementPixelCropTop,
		ElementPixelCropLeft,
		ElementPixelCropRight,
		ElementDisplayWidth,
		ElementDisplayHeight,
		ElementDisplayUint,
		ElementAspectRatioType,
		ElementColourSpace,
		ElementAudio,
		ElementSamplingFrequency,
		ElementOutputSamplingFrequency,
		ElementChannels,
		ElementBitDepth,
		ElementTrackOperation,
		ElementTrackCombinePlanes,
		ElementTrackPlane,
		ElementTrackPlaneUID,
		ElementTrackPlaneType,
		ElementTrackJoinBlocks,
		ElementTrackJoinUID,
		ElementContentEncodings,
		ElementContentEncoding,
		ElementContentEncodingOrder,
		ElementContentEncodingScope,
		ElementContentEncodingType,
		ElementContentCompression,
		ElementContentCompAlgo,
		ElementContentCompSettings,
		ElementContentEncryption,
		ElementContentEncAlgo,
		ElementContentEncKeyID,
		ElementContentSignature,
		ElementContentSigKeyID,
		ElementContentSigAlgo,
		ElementContentSigHashAlgo,
		ElementCues,
		ElementCuePoint,
		ElementCueTime,
		ElementCueTrackPositions,
		ElementCueTrack,
		ElementCueClusterPosition,
		ElementCueRelativePosition,
		ElementCueDuration,
		ElementCueBlockNumber,
		ElementCueCodecState,
		ElementCueReference,
		ElementCueRefTime,
		ElementAttachments,
		ElementAttachedFile,
		ElementFileDescription,
		ElementFileName,
		ElementFileMimeType,
		ElementFileData,
		ElementFileUID,
		ElementChapters,
		ElementEditionEntry,
		ElementEditionUID,
		ElementEditionFlagHidden,
		ElementEditionFlagDefault,
		ElementEditionFlagOrdered,
		ElementChapterAtom,
		ElementChapterUID,
		ElementChapterStringUID,
		ElementChapterTimeStart,
		ElementChapterTimeEnd,
		ElementChapterFlagHidden,
		ElementChapterFlagEnabled,
		ElementChapterSegmentUID,
		ElementChapterSegmentEditionUID,
		ElementChapterPhysicalEquiv,
		ElementChapterTrack,
		ElementChapterTrackNumber,
		ElementChapterDisplay,
		ElementChapString,
		ElementChapLanguage,
		ElementChapCountry,
		ElementChapProcess,
		ElementChapProcessCodecID,
		ElementChapProcessPrivate,
		ElementChapProcessCommand,
		ElementChapProcessTime,
		ElementChapProcessData,
		ElementTags,
		ElementTag,
		ElementTargets,
		ElementTargetTypeValue,
		ElementTargetType,
		ElementTagTrackUID,
		ElementTagEditionUID,
		ElementTagChapterUID,
		ElementTagAttachmentUID,
		ElementSimpleTag,
		ElementTagName,
		ElementTagLanguage,
		ElementTagDefault,
		ElementTagString,
		ElementTagBinary,
)

// Schema maps element IDs to their register.
type Schema map[uint32]ElementRegister

// NewSchema builds a schema from a list of registers. Later registers
// override earlier ones with the same ID.
func NewSchema(regs ...ElementRegister) Schema {
	s := make(Schema, len(regs))
	for _, reg := range regs {
		s[reg.ID] = reg
	}
	return s
}

// Resolve returns the infos concerning the provided element ID.
// IDs missing from the schema resolve to ElementUnknown with the ID kept.
func (s Schema) Resolve(id uint32) ElementRegister {
	if reg, ok := s[id]; ok {
		return reg
	}
	reg := ElementUnknown
	reg.ID = id
	return reg
}

// GetElementRegister returns the infos concerning the provided element ID
func GetElementRegister(id uint32) ElementRegister {
	return DefaultSchema.Resolve(id)
}
