//go:build tinygo && rp2040

package hal

import (
	"machine/usb"
	"machine/usb/descriptor"
)

// Report ids of keyballReport.
const (
	reportIDMouse    = 1
	reportIDKeyboard = 2
	reportIDConsumer = 3
)

// keyballReport is the HID report descriptor: a wheel mouse with an AC Pan
// axis, a boot-layout keyboard and a consumer control.
var keyballReport = descriptor.Append([][]byte{
	// Mouse: buttons, x, y, wheel, pan.
	descriptor.HIDUsagePageGenericDesktop,
	descriptor.HIDUsageDesktopMouse,
	descriptor.HIDCollectionApplication,
	descriptor.HIDUsageDesktopPointer,
	descriptor.HIDCollectionPhysical,
	descriptor.HIDReportID(reportIDMouse),
	descriptor.HIDUsagePageButton,
	descriptor.HIDUsageMinimum(1),
	descriptor.HIDUsageMaximum(5),
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(1),
	descriptor.HIDReportCount(5),
	descriptor.HIDReportSize(1),
	descriptor.HIDInputDataVarAbs,
	descriptor.HIDReportCount(1),
	descriptor.HIDReportSize(3),
	descriptor.HIDInputConstVarAbs,
	descriptor.HIDUsagePageGenericDesktop,
	descriptor.HIDUsageDesktopX,
	descriptor.HIDUsageDesktopY,
	descriptor.HIDUsageDesktopWheel,
	descriptor.HIDLogicalMinimum(-127),
	descriptor.HIDLogicalMaximum(127),
	descriptor.HIDReportSize(8),
	descriptor.HIDReportCount(3),
	descriptor.HIDInputDataVarRel,
	descriptor.HIDUsagePageConsumer,
	{0x0A, 0x38, 0x02}, // Usage (AC Pan)
	descriptor.HIDReportCount(1),
	descriptor.HIDInputDataVarRel,
	descriptor.HIDCollectionEnd,
	descriptor.HIDCollectionEnd,

	// Keyboard: modifiers, reserved, LEDs out, six keys.
	descriptor.HIDUsagePageGenericDesktop,
	descriptor.HIDUsageDesktopKeyboard,
	descriptor.HIDCollectionApplication,
	descriptor.HIDReportID(reportIDKeyboard),
	descriptor.HIDUsagePageKeyboard,
	descriptor.HIDUsageMinimum(224),
	descriptor.HIDUsageMaximum(231),
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(1),
	descriptor.HIDReportSize(1),
	descriptor.HIDReportCount(8),
	descriptor.HIDInputDataVarAbs,
	descriptor.HIDReportCount(1),
	descriptor.HIDReportSize(8),
	descriptor.HIDInputConstVarAbs,
	descriptor.HIDReportCount(3),
	descriptor.HIDReportSize(1),
	descriptor.HIDUsagePageLED,
	descriptor.HIDUsageMinimum(1),
	descriptor.HIDUsageMaximum(3),
	descriptor.HIDOutputDataVarAbs,
	descriptor.HIDReportCount(5),
	descriptor.HIDReportSize(1),
	descriptor.HIDOutputConstVarAbs,
	descriptor.HIDReportCount(6),
	descriptor.HIDReportSize(8),
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(255),
	descriptor.HIDUsagePageKeyboard,
	descriptor.HIDUsageMinimum(0),
	descriptor.HIDUsageMaximum(255),
	descriptor.HIDInputDataAryAbs,
	descriptor.HIDCollectionEnd,

	// Consumer control: one 16-bit usage.
	descriptor.HIDUsagePageConsumer,
	descriptor.HIDUsageConsumerControl,
	descriptor.HIDCollectionApplication,
	descriptor.HIDReportID(reportIDConsumer),
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(8191),
	descriptor.HIDUsageMinimum(0),
	descriptor.HIDUsageMaximum(0x1FFF),
	descriptor.HIDReportSize(16),
	descriptor.HIDReportCount(1),
	descriptor.HIDInputDataAryAbs,
	descriptor.HIDCollectionEnd,
})

// keyballDescriptor is the CDC+HID device with keyballReport on the HID
// interface. It replaces descriptor.CDCHID before the HID ports register.
var keyballDescriptor = descriptor.Descriptor{
	Device: descriptor.DeviceCDC.Bytes(),
	Configuration: descriptor.Append([][]byte{
		descriptor.ConfigurationCDCHID.Bytes(),
		descriptor.InterfaceAssociationCDC.Bytes(),
		descriptor.InterfaceCDCControl.Bytes(),
		descriptor.ClassSpecificCDCHeader.Bytes(),
		descriptor.ClassSpecificCDCACM.Bytes(),
		descriptor.ClassSpecificCDCUnion.Bytes(),
		descriptor.ClassSpecificCDCCallManagement.Bytes(),
		descriptor.EndpointEP1IN.Bytes(),
		descriptor.InterfaceCDCData.Bytes(),
		descriptor.EndpointEP2OUT.Bytes(),
		descriptor.EndpointEP3IN.Bytes(),
		descriptor.InterfaceHID.Bytes(),
		classHID(len(keyballReport)),
		descriptor.EndpointEP4IN.Bytes(),
		descriptor.EndpointEP5OUT.Bytes(),
	}),
	HID: map[uint16][]byte{
		usb.HID_INTERFACE: keyballReport,
	},
}

// classHID returns the HID class descriptor announcing a report descriptor
// of n bytes.
func classHID(n int) []byte {
	b := descriptor.ClassHID.Bytes()
	b[7] = byte(n)
	b[8] = byte(n >> 8)
	return b
}
