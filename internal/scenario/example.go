package scenario

// Example returns a scenario exercising every step kind.
func Example() *File {
	return &File{
		FakeRoots: FakeRoots{
			Recent:     "Recent",
			AddService: "Add new service",
		},
		Volumes: []Volume{
			{ID: "downloads", Type: "downloads", Label: "Downloads"},
		},
		Shortcuts: []Shortcut{
			{Name: "Projects", URL: "filesystem:/projects"},
		},
		Steps: []Step{
			{Mount: &Volume{ID: "crostini", Type: "crostini", Label: "Linux files"}},
			{Mount: &Volume{ID: "usb-1", Type: "removable", Label: "Photos", DevicePath: "/dev/sdb", DriveLabel: "USB"}},
			{Mount: &Volume{ID: "usb-2", Type: "removable", Label: "Backup", DevicePath: "/dev/sdb", DriveLabel: "USB"}},
			{SetFake: &FakeAssignment{Kind: "linux_files", Label: "Linux files"}},
			{Unmount: "crostini"},
			{AddShortcut: &Shortcut{Name: "Work", URL: "filesystem:/work"}},
			{Update: &Volume{ID: "usb-1", Label: "Pictures", DevicePath: "/dev/sdb", DriveLabel: "USB"}},
			{NotFound: "filesystem:/projects"},
			{Unmount: "usb-2"},
			{RemoveShortcut: "filesystem:/work"},
			{ClearFake: "recent"},
		},
	}
}
