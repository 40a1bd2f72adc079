package bytepress

// Version is the host version plugins declare compatibility against.
const Version = "0.1.0"
