// Package mfr pkg/mfr/table.go holds the static OUI prefix table consulted
// before any external lookup.
package mfr

// vendorClass pairs a manufacturer with the device class its OUI usually
// ships in.
type vendorClass struct {
	Vendor string
	Class  string
}

// ouiTable maps the first three octets of a MAC address to a known vendor
// and device class. Hits here are deterministic and cost no I/O.
var ouiTable = map[string]vendorClass{
	"00:1E:65": {"Dell", "PC"},
	"F0:79:59": {"Lenovo", "PC"},
	"E0:D5:5E": {"HP", "PC"},
	"3C:A8:2A": {"Acer", "PC"},
	"B4:2E:99": {"Asus", "PC"},
	"00:03:93": {"Toshiba", "PC"},
	"D4:6A:6A": {"Apple", "iPhone"},
	"68:5B:35": {"Apple", "Mac"},
	"A4:5E:60": {"Apple", "iPad"},
	"A4:77:33": {"Samsung", "Phone"},
	"FC:FC:48": {"Huawei", "Phone"},
	"3C:07:54": {"Xiaomi", "Phone"},
	"54:99:63": {"Motorola", "Phone"},
	"74:23:44": {"Realme", "Phone"},
	"00:0E:8F": {"HTC", "Phone"},
	"00:1A:11": {"HP", "Printer"},
	"28:37:37": {"Canon", "Printer"},
	"AC:84:C6": {"Epson", "Printer"},
	"00:21:5C": {"Cisco", "Router"},
	"B8:27:EB": {"Raspberry Pi", "IoT Device"},
	"60:38:E0": {"TP-Link", "Router"},
	"F4:F2:6D": {"LG", "Smart TV"},
}
