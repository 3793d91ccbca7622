// Package testdata holds small charts in each supported format.
package testdata

// SM is a 4K StepMania chart at 120 BPM starting half a second in: four
// taps, a hold in column 0 from 2.5s to 3.5s, and a mine beside the last
// tap at 4s.
const SM = `#TITLE:Test Pattern;
#ARTIST:cadence;
#MUSIC:song.ogg;
#OFFSET:-0.500;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     :
     Hard:
     5:
     0,0,0,0,0:
1000
0100
0010
0001
,
2000
0000
3000
M001
;
`

// Osu is a 4K osu!mania chart with a hold in column 2.
const Osu = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 3

[Metadata]
Version:Hard
Creator:cadence

[Difficulty]
CircleSize:4

[TimingPoints]
0,500,4,2,0,100,1,0

[HitObjects]
64,192,1000,1,0,0:0:0:0:
192,192,1250,1,0,0:0:0:0:
320,192,1500,128,0,2000:0:0:0:0:
448,192,1750,1,0,0:0:0:0:
`

// OsuStandard is not a mania chart and is skipped inside archives.
const OsuStandard = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[HitObjects]
256,192,1000,1,0,0:0:0:0:
`

// JSON is the normalized form the judge is seeded with.
const JSON = `{
  "name": "Normal",
  "columns": 4,
  "audio": "song.ogg",
  "notes": [
    {"column": 1, "time": 1500},
    {"column": 0, "time": 1000, "hold": true, "endTime": 2000},
    {"column": 3, "time": 1000}
  ]
}`
