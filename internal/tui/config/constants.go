package config

import "time"

// Layout constants
const (
	// Preview panel takes this share of the width when shown
	PreviewPanelWidthRatio = 0.35
	MinPreviewPanelWidth   = 24

	// List view column widths
	DefaultColumnSizeWidth     = 10
	DefaultColumnTypeWidth     = 14
	DefaultColumnModifiedWidth = 14
	MinColumnNameWidth         = 20
	MaxColumnNameWidth         = 60

	// Grid view
	GridCardWidth     = 22
	GridCardNameWidth = GridCardWidth - 4

	// Loading skeleton placeholders, per view
	SkeletonListRows  = 6
	SkeletonGridCards = 8

	// Rows reserved for header, toolbar, breadcrumb, status and footer
	ReservedRows = 9

	DialogDefaultWidth = 56
	HelpDialogWidth    = 70
)

// Timing constants
const (
	StatusMessageTTL = 3 * time.Second
	RequestTimeout   = 30 * time.Second
	PreviewTimeout   = 20 * time.Second
)
