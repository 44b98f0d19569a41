// Package asset holds the built-in configuration and filesystem tree used
// when no files are given on the command line.
package asset

// DefaultConfig is the TOML configuration loaded before any user file
const DefaultConfig = `
# === Rendering ===
[render]
fps = 60
pixel_scale = 2       # window frontend: screen pixels per virtual pixel
window_width = 1280
window_height = 800
pixel_size = 1.0      # rasterization cell size in composite pixels
tint = false          # monochrome phosphor output
noise = ""            # PNG noise texture; empty generates one

[colors]
background = "#0b0f0c"
frame = "#1c1f1d"
phosphor = "#33ff66"
text = "#33ff66"
prompt = "#9dffb5"
error = "#ff5f56"
accent = "#ffc83c"

# === Effect profiles ===
# A profile lists every effect it uses; omitted effects are off.
[effects]
active = "classic"

[effects.profiles.classic]
curvature = 0.3
raster_mode = "scanline"
raster_intensity = 0.5
jitter = 0.002
flicker = 0.1
static_noise = 0.06
horizontal_sync = 0.08
bloom = 0.35
chroma_shift = 0.0015
burn_in = 0.45
noise_scale = 1.0
frame_margin = 0.04

[effects.profiles.trinitron]
curvature = 0.15
raster_mode = "subpixel"
raster_intensity = 0.35
jitter = 0.001
flicker = 0.04
static_noise = 0.02
horizontal_sync = 0.02
bloom = 0.25
chroma_shift = 0.001
burn_in = 0.3
noise_scale = 1.0
frame_margin = 0.03

[effects.profiles.arcade]
curvature = 0.45
raster_mode = "pixel"
raster_intensity = 0.7
jitter = 0.004
flicker = 0.15
static_noise = 0.1
horizontal_sync = 0.12
bloom = 0.5
chroma_shift = 0.003
burn_in = 0.6
noise_scale = 2.0
frame_margin = 0.06

[effects.profiles.clean]
noise_scale = 1.0

# === Font ===
[font]
size = 16.0
path = ""             # TTF/OTF file; empty uses Go Mono

# === Audio ===
[audio]
enabled = true
volume = 0.6
ambient = ""          # mp3/wav file; empty uses the synthesized hum
game = ""             # empty uses the synthesized chiptune

# === CV command ===
[cv]
url = "https://lixenwraith.github.io/cv/cv.json"
pdf = "https://lixenwraith.github.io/cv/cv.pdf"
timeout = "10s"

# === Shell ===
[shell]
user = "guest"
host = "phosphor"
home = "/home/guest"
tree = ""             # YAML filesystem; empty uses the built-in tree
scrollback = 1000

# === History and scores ===
[history]
path = ""             # bbolt file; empty keeps history in memory
`
