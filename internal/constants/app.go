package constants

import (
	"time"
)

// Labels for synthetic navigation entries
const (
	// MyFilesLabel - label of the "My files" virtual group
	MyFilesLabel = "My files"

	// RemovableFallbackLabel - label of a removable partition group whose
	// partitions carry no drive label
	RemovableFallbackLabel = "External Drive"
)

// Volume sub-typing
const (
	// ZipProviderID - extension id of the ZIP archiver. It mounts zip files as
	// "provided" volumes; volumes whose id contains this string are laid out
	// with archives instead of with file system providers.
	ZipProviderID = "dmboannefpncccogfdikhmhpmdnddgoe"
)

// Display root resolution
const (
	// DefaultResolverConcurrency - number of display roots resolved in parallel
	DefaultResolverConcurrency = 4

	// MinResolverConcurrency / MaxResolverConcurrency - accepted config range
	MinResolverConcurrency = 1
	MaxResolverConcurrency = 32

	// DefaultResolveTimeout - deadline for a single display root resolution
	DefaultResolveTimeout = 5 * time.Second

	// MaxResolveTimeout - upper bound accepted from config
	MaxResolveTimeout = 2 * time.Minute
)

// Config file
const (
	// ConfigFileName - name of the INI file under the user config directory
	ConfigFileName = "navlist.conf"

	// ConfigDirName - directory under os.UserConfigDir()
	ConfigDirName = "navlist"
)
