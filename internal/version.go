package internal

// Version is the forvodl release version
const Version = "0.3.1"
